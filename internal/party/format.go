package party

import (
	"fmt"
	"strconv"
	"strings"

	"idola-backend/internal/components/assert"
	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/scrapers/idola"
)

const (
	report_formatter_idomag = "formatter.idomag"

	Placeholder = "-"

	maxNameWidth = 20

	avatarTemplate = "https://raw.githubusercontent.com/NNSTJP/Idola/master/Character%%20Icon/%s%%20%s.png"
	DefaultAvatar  = "https://i0.wp.com/bumped.org/idola/wp-content/uploads/2019/11/character-rappy-thumb.png"
)

// Names resolves reference ids to display names.
type Names interface {
	Name(id int64) string
	Lookup(id string) (string, bool)
	Exact(id int64) bool
}

type Unit struct {
	Character    string
	LimitBreak   string
	DestinyBonus string
	Weapon       string
	WeaponLevel  int
	Soul         string
	SoulLevel    int
}

// CharacterLine is the character name followed by its limit break and
// destiny bonus, ex. "Rappy\n●●○○(2)".
func (u Unit) CharacterLine() string {
	return fmt.Sprintf("%s\n%s(%s)", u.Character, u.LimitBreak, u.DestinyBonus)
}

func (u Unit) WeaponLine() string {
	return fmt.Sprintf("%s\nLV%d", u.Weapon, u.WeaponLevel)
}

func (u Unit) SoulLine() string {
	return fmt.Sprintf("%s\nLV%d", u.Soul, u.SoulLevel)
}

// Side is one alignment of a party.
type Side struct {
	Units  []Unit
	Idomag string
}

type Composition struct {
	PlayerName string
	AvatarURL  string
	TeamScore  int64
	Law        Side
	Chaos      Side
}

// OptionChange lists the current and next option bonuses of one unit's symbols.
type OptionChange struct {
	Character     string
	WeaponSymbol  string
	WeaponCurrent []string
	WeaponNext    []string
	SoulSymbol    string
	SoulCurrent   []string
	SoulNext      []string
}

type Formatter struct {
	names Names
	tel   telemetry.API
}

func NewFormatter(names Names, tel telemetry.API) Formatter {
	assert.NotNil(names)
	assert.NotNil(tel)
	return Formatter{
		names: names,
		tel:   telemetry.NewScopedAPI("party", tel),
	}
}

func (f Formatter) Compose(info idola.PartyInfo) Composition {
	return Composition{
		PlayerName: info.PlayerName,
		AvatarURL:  f.AvatarURL(info.AvatarCharacterID),
		TeamScore:  info.StrengthValue,
		Law:        f.side(info.Law, info.LawIdomag),
		Chaos:      f.side(info.Chaos, info.ChaosIdomag),
	}
}

func (f Formatter) side(units []idola.PartyUnit, idomag *idola.Idomag) Side {
	out := Side{
		Units:  make([]Unit, len(units)),
		Idomag: f.idomag(idomag),
	}
	for i, u := range units {
		out.Units[i] = Unit{
			Character:    Truncate(f.names.Name(u.Character.CharID)),
			LimitBreak:   LimitBreak(u.Character.Potential),
			DestinyBonus: DestinyBonus(u.DestinyBonusLevel, u.DestinyBonusStatus),
			Weapon:       Truncate(f.names.Name(u.WeaponSymbol.SymbolID)),
			WeaponLevel:  u.WeaponSymbol.Level,
			Soul:         Truncate(f.names.Name(u.SoulSymbol.SymbolID)),
			SoulLevel:    u.SoulSymbol.Level,
		}
	}
	return out
}

// idomag renders "<type>(<name>)", anything it cannot resolve becomes the
// placeholder so the rest of the party still renders.
func (f Formatter) idomag(idomag *idola.Idomag) string {
	if idomag == nil || idomag.IdomagTypeID == 0 {
		return Placeholder
	}
	typeName, ok := f.names.Lookup(strconv.FormatInt(idomag.IdomagTypeID, 10))
	if !ok {
		f.tel.ReportWarning(report_formatter_idomag, "unknown idomag type", idomag.IdomagTypeID)
		return Placeholder
	}
	return fmt.Sprintf("%s(%s)", typeName, idomag.Name)
}

// AvatarURL points at the community icon of a character, unknown ids get a
// default image.
func (f Formatter) AvatarURL(characterId int64) string {
	id := strconv.FormatInt(characterId, 10)
	if len(id) < 3 || !f.names.Exact(characterId) {
		return DefaultAvatar
	}
	return fmt.Sprintf(avatarTemplate, id[:len(id)-2], id[len(id)-2:])
}

// NextOptions lists every unit of both sides, law first.
func (f Formatter) NextOptions(info idola.PartyInfo) []OptionChange {
	units := make([]idola.PartyUnit, 0, len(info.Law)+len(info.Chaos))
	units = append(units, info.Law...)
	units = append(units, info.Chaos...)

	out := make([]OptionChange, len(units))
	for i, u := range units {
		out[i] = OptionChange{
			Character:     f.names.Name(u.Character.CharID),
			WeaponSymbol:  f.names.Name(u.WeaponSymbol.SymbolID),
			WeaponCurrent: FormatOptionBonuses(u.WeaponSymbol.OptionBonusList),
			WeaponNext:    FormatOptionBonuses(u.WeaponSymbol.NextOptionBonusList),
			SoulSymbol:    f.names.Name(u.SoulSymbol.SymbolID),
			SoulCurrent:   FormatOptionBonuses(u.SoulSymbol.OptionBonusList),
			SoulNext:      FormatOptionBonuses(u.SoulSymbol.NextOptionBonusList),
		}
	}
	return out
}

// Truncate shortens names of 20 or more characters to 18 plus "..".
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) < maxNameWidth {
		return text
	}
	return string(runes[:maxNameWidth-2]) + ".."
}

func DestinyBonus(level, status int) string {
	if status == 0 {
		return Placeholder
	}
	return strconv.Itoa(level)
}

// LimitBreak draws the potential 0..4 as filled circles, other values are
// printed as is.
func LimitBreak(potential int) string {
	if potential < 0 || potential > 4 {
		return strconv.Itoa(potential)
	}
	return strings.Repeat("●", potential) + strings.Repeat("○", 4-potential)
}

var optionNames = map[int]string{
	1: "HP",
	2: "ATK",
	3: "DEF",
	4: "SPD",
	5: "CRIT",
	6: "RES",
	7: "ELE",
}

const optionElement = 7

func OptionName(id int) string {
	name, ok := optionNames[id]
	if !ok {
		return "Unknown"
	}
	return name
}

func FormatOptionBonus(bonus idola.OptionBonus) string {
	name := OptionName(bonus.OptionBonusID)
	switch {
	case bool(bonus.IsFixed):
		return fmt.Sprintf("%s: %d", name, bonus.Value)
	case bonus.OptionBonusID == optionElement:
		return fmt.Sprintf("%s: 0.%d", name, bonus.Value)
	default:
		return fmt.Sprintf("%s: %d%%", name, bonus.Value)
	}
}

func FormatOptionBonuses(list []idola.OptionBonus) []string {
	out := make([]string, len(list))
	for i, bonus := range list {
		out[i] = FormatOptionBonus(bonus)
	}
	return out
}

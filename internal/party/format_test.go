package party

import (
	"strings"
	"testing"

	"idola-backend/internal/components/telemetry"
	"idola-backend/internal/identity"
	"idola-backend/internal/scrapers/idola"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testFormatter(tel telemetry.API) Formatter {
	table := identity.NewTable(map[string]string{
		"1001":   "Rappy",
		"100101": "Rappy",
		"1002":   "A Character With A Very Long Name",
		"2001":   "Ray Blade",
		"3001":   "Soul of Law",
		"4001":   "Dragon",
	})
	return NewFormatter(identity.NewResolver(table, tel), tel)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short"))
	require.Equal(t, "nineteen characters", Truncate("nineteen characters"))
	require.Equal(t, "twenty characters!..", Truncate("twenty characters!!!"))
	require.Equal(t, "abcdefghijklmnopqr..", Truncate("abcdefghijklmnopqrst"))
	require.Equal(t, strings.Repeat("あ", 18)+"..", Truncate(strings.Repeat("あ", 20)))
	require.Equal(t, strings.Repeat("あ", 19), Truncate(strings.Repeat("あ", 19)))
}

func TestDestinyBonusAndLimitBreak(t *testing.T) {
	require.Equal(t, "-", DestinyBonus(5, 0))
	require.Equal(t, "5", DestinyBonus(5, 1))

	require.Equal(t, "○○○○", LimitBreak(0))
	require.Equal(t, "●●○○", LimitBreak(2))
	require.Equal(t, "●●●●", LimitBreak(4))
	require.Equal(t, "7", LimitBreak(7))
}

func TestFormatOptionBonus(t *testing.T) {
	testCases := []struct {
		bonus  idola.OptionBonus
		expect string
	}{
		{bonus: idola.OptionBonus{OptionBonusID: 1, Value: 500, IsFixed: true}, expect: "HP: 500"},
		{bonus: idola.OptionBonus{OptionBonusID: 2, Value: 12}, expect: "ATK: 12%"},
		{bonus: idola.OptionBonus{OptionBonusID: 7, Value: 5}, expect: "ELE: 0.5"},
		{bonus: idola.OptionBonus{OptionBonusID: 7, Value: 5, IsFixed: true}, expect: "ELE: 5"},
		{bonus: idola.OptionBonus{OptionBonusID: 99, Value: 1}, expect: "Unknown: 1%"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expect, FormatOptionBonus(test.bonus))
	}
}

func TestCompose(t *testing.T) {
	tel := &telemetry.RecorderAPI{}
	formatter := testFormatter(tel)

	info := idola.PartyInfo{
		PlayerName:        "alice",
		StrengthValue:     123456,
		AvatarCharacterID: 100101,
		Law: []idola.PartyUnit{
			{
				Character:          idola.PartyCharacter{CharID: 10010101, Potential: 2},
				WeaponSymbol:       idola.Symbol{SymbolID: 20010001, Level: 5},
				SoulSymbol:         idola.Symbol{SymbolID: 30010001, Level: 3},
				DestinyBonusLevel:  2,
				DestinyBonusStatus: 1,
			},
		},
		Chaos: []idola.PartyUnit{
			{
				Character:    idola.PartyCharacter{CharID: 10020101},
				WeaponSymbol: idola.Symbol{SymbolID: 99990001, Level: 1},
			},
		},
		LawIdomag:   &idola.Idomag{IdomagTypeID: 4001, Name: "pet"},
		ChaosIdomag: &idola.Idomag{IdomagTypeID: 4999, Name: "ghost"},
	}

	expect := Composition{
		PlayerName: "alice",
		AvatarURL:  "https://raw.githubusercontent.com/NNSTJP/Idola/master/Character%20Icon/1001%2001.png",
		TeamScore:  123456,
		Law: Side{
			Units: []Unit{{
				Character:    "Rappy",
				LimitBreak:   "●●○○",
				DestinyBonus: "2",
				Weapon:       "Ray Blade",
				WeaponLevel:  5,
				Soul:         "Soul of Law",
				SoulLevel:    3,
			}},
			Idomag: "Dragon(pet)",
		},
		Chaos: Side{
			Units: []Unit{{
				Character:    "A Character With A..",
				LimitBreak:   "○○○○",
				DestinyBonus: "-",
				Weapon:       "Unknown",
				WeaponLevel:  1,
				Soul:         "-",
			}},
			Idomag: "-",
		},
	}

	got := formatter.Compose(info)
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatalf("unexpected composition (-want +got):\n%s", diff)
	}
	require.Len(t, tel.Warnings(report_formatter_idomag), 1)

	require.Equal(t, "Rappy\n●●○○(2)", got.Law.Units[0].CharacterLine())
	require.Equal(t, "Ray Blade\nLV5", got.Law.Units[0].WeaponLine())
	require.Equal(t, "-\nLV0", got.Chaos.Units[0].SoulLine())
}

func TestComposeWithoutIdomag(t *testing.T) {
	formatter := testFormatter(telemetry.SlogAPI{})
	got := formatter.Compose(idola.PartyInfo{PlayerName: "bob", AvatarCharacterID: 555555})
	require.Equal(t, Placeholder, got.Law.Idomag)
	require.Equal(t, Placeholder, got.Chaos.Idomag)
	require.Equal(t, DefaultAvatar, got.AvatarURL)
	require.Empty(t, got.Law.Units)
}

func TestNextOptions(t *testing.T) {
	formatter := testFormatter(telemetry.SlogAPI{})
	info := idola.PartyInfo{
		Law: []idola.PartyUnit{{
			Character: idola.PartyCharacter{CharID: 10010101},
			WeaponSymbol: idola.Symbol{
				SymbolID:            20010001,
				OptionBonusList:     []idola.OptionBonus{{OptionBonusID: 2, Value: 10}},
				NextOptionBonusList: []idola.OptionBonus{{OptionBonusID: 2, Value: 12}},
			},
		}},
		Chaos: []idola.PartyUnit{{
			Character: idola.PartyCharacter{CharID: 10020101},
			SoulSymbol: idola.Symbol{
				SymbolID:            30010001,
				NextOptionBonusList: []idola.OptionBonus{{OptionBonusID: 1, Value: 300, IsFixed: true}},
			},
		}},
	}

	changes := formatter.NextOptions(info)
	require.Len(t, changes, 2)
	require.Equal(t, "Rappy", changes[0].Character)
	require.Equal(t, []string{"ATK: 10%"}, changes[0].WeaponCurrent)
	require.Equal(t, []string{"ATK: 12%"}, changes[0].WeaponNext)
	require.Equal(t, "A Character With A Very Long Name", changes[1].Character)
	require.Empty(t, changes[1].SoulCurrent)
	require.Equal(t, []string{"HP: 300"}, changes[1].SoulNext)
}

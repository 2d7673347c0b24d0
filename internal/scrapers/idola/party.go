package idola

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const report_client_party_details = "client.party-details"

// Flag decodes the upstream's boolean-ish fields, which arrive as either
// JSON booleans or 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = n != 0
	return nil
}

type OptionBonus struct {
	OptionBonusID int  `json:"option_bonus_id"`
	Value         int  `json:"value"`
	IsFixed       Flag `json:"is_fixed"`
}

type Symbol struct {
	SymbolID            int64         `json:"symbol_id"`
	Level               int           `json:"level"`
	OptionBonusList     []OptionBonus `json:"option_bonus_list"`
	NextOptionBonusList []OptionBonus `json:"next_option_bonus_list"`
}

type PartyCharacter struct {
	CharID    int64 `json:"char_id"`
	Potential int   `json:"potential"`
}

// PartyUnit is one combat unit slot of a party.
type PartyUnit struct {
	Character          PartyCharacter `json:"character"`
	WeaponSymbol       Symbol         `json:"weapon_symbol"`
	SoulSymbol         Symbol         `json:"soul_symbol"`
	DestinyBonusLevel  int            `json:"destiny_bonus_level"`
	DestinyBonusStatus int            `json:"destiny_bonus_status"`
}

type Idomag struct {
	IdomagTypeID int64  `json:"idomag_type_id"`
	Name         string `json:"name"`
}

// PartyInfo is the party detail payload, the idomags are optional.
type PartyInfo struct {
	PlayerName        string
	StrengthValue     int64
	AvatarCharacterID int64
	Law               []PartyUnit
	Chaos             []PartyUnit
	LawIdomag         *Idomag
	ChaosIdomag       *Idomag
}

// partyInfoRow keeps the idomags raw, players without one get anything from
// null to an empty list.
type partyInfoRow struct {
	PlayerName        string          `json:"player_name"`
	StrengthValue     int64           `json:"strength_value"`
	AvatarCharacterID int64           `json:"avator_character_id"`
	Law               []PartyUnit     `json:"law"`
	Chaos             []PartyUnit     `json:"chaos"`
	LawIdomag         json.RawMessage `json:"law_idomag"`
	ChaosIdomag       json.RawMessage `json:"chaos_idomag"`
}

// parseIdomag returns nil for an absent idomag and an error for one that
// is present but not an object.
func parseIdomag(raw json.RawMessage) (*Idomag, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out Idomag
	err := json.Unmarshal(trimmed, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) idomag(side string, raw json.RawMessage) *Idomag {
	idomag, err := parseIdomag(raw)
	if err != nil {
		c.tel.ReportWarning(report_client_party_details, fmt.Errorf("%s idomag: %w", side, err), string(raw))
		return nil
	}
	return idomag
}

// PartyDetails fetches the arena party registered by a profile.
func (c *Client) PartyDetails(ctx context.Context, profileId int64) (PartyInfo, error) {
	res, err := call[partyDetailsReplace](
		ctx, c, report_client_party_details, pathArenaPartyDetails,
		&partyDetailsRequest{ProfileID: profileId},
	)
	if err != nil {
		return PartyInfo{}, err
	}
	row := res.PartyInfo
	c.observeProfile(row.PlayerName, profileId)
	return PartyInfo{
		PlayerName:        row.PlayerName,
		StrengthValue:     row.StrengthValue,
		AvatarCharacterID: row.AvatarCharacterID,
		Law:               row.Law,
		Chaos:             row.Chaos,
		LawIdomag:         c.idomag("law", row.LawIdomag),
		ChaosIdomag:       c.idomag("chaos", row.ChaosIdomag),
	}, nil
}

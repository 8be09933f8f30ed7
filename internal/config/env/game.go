package env

import (
	"fmt"
	"os"
	"run_the_numbers/internal/config"
	"run_the_numbers/internal/model"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	gameConfigEnvName = "GAME_CONFIG"

	lockHand = "hand"

	specificCardPayout = 12
)

type gameFile struct {
	Table struct {
		Denominations   []int         `yaml:"denominations"`
		InitialBankroll int           `yaml:"initial_bankroll"`
		DealDelay       time.Duration `yaml:"deal_delay"`
		DealDelayStep   time.Duration `yaml:"deal_delay_step"`
		HistorySize     int           `yaml:"history_size"`
		BankrollHistory int           `yaml:"bankroll_history_size"`
		PlaythroughRate int           `yaml:"playthrough_rate"`
	} `yaml:"table"`
	DefaultPaytable string `yaml:"default_paytable"`
	Paytables       []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Steps []int  `yaml:"steps"`
	} `yaml:"paytables"`
	SpecificCards struct {
		Enabled bool   `yaml:"enabled"`
		Payout  int    `yaml:"payout"`
		Lock    string `yaml:"lock"`
	} `yaml:"specific_cards"`
	Spots []spotEntry `yaml:"spots"`
}

type spotEntry struct {
	Key       string `yaml:"key"`
	Type      string `yaml:"type"`
	Label     string `yaml:"label"`
	Payout    int    `yaml:"payout"`
	Lock      string `yaml:"lock"`
	Rank      string `yaml:"rank"`
	Suit      string `yaml:"suit"`
	CountMin  int    `yaml:"count_min"`
	CountMax  int    `yaml:"count_max"`
	OpenEnded bool   `yaml:"open_ended"`
}

type gameConfig struct {
	file gameFile
	defs []model.BetDefinition
}

// NewGameConfig читает каталог ставок из файла GAME_CONFIG
func NewGameConfig() (config.GameConfig, error) {
	path := stringEnv(gameConfigEnvName, "config.yaml")
	return NewGameConfigFromYAML(path)
}

func NewGameConfigFromYAML(path string) (config.GameConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config: %w", err)
	}
	return ParseGameConfig(raw)
}

func ParseGameConfig(raw []byte) (config.GameConfig, error) {
	var f gameFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	if len(f.Paytables) == 0 {
		return nil, fmt.Errorf("game config: no paytables")
	}

	defs := make([]model.BetDefinition, 0, len(f.Spots)+40)
	for _, s := range f.Spots {
		def, err := s.definition()
		if err != nil {
			return nil, fmt.Errorf("game config: spot %q: %w", s.Key, err)
		}
		defs = append(defs, def)
	}
	if f.SpecificCards.Enabled {
		defs = append(defs, specificCardDefinitions(f.SpecificCards.Payout, f.SpecificCards.Lock == lockHand)...)
	}

	return &gameConfig{file: f, defs: defs}, nil
}

func (s spotEntry) definition() (model.BetDefinition, error) {
	def := model.BetDefinition{
		Key:            s.Key,
		Label:          s.Label,
		Payout:         s.Payout,
		LockDuringHand: s.Lock == lockHand,
	}
	switch model.BetType(s.Type) {
	case model.BetTypeNumber:
		def.Kind = model.NumberBet{Rank: model.Rank(s.Rank)}
	case model.BetTypeSpecificCard:
		suit, ok := model.ParseSuit(s.Suit)
		if !ok {
			return def, fmt.Errorf("unknown suit %q", s.Suit)
		}
		def.Kind = model.SpecificCardBet{Rank: model.Rank(s.Rank), Suit: suit}
	case model.BetTypeBustSuit:
		suit, ok := model.ParseSuit(s.Suit)
		if !ok {
			return def, fmt.Errorf("unknown suit %q", s.Suit)
		}
		def.Kind = model.BustSuitBet{Suit: suit}
	case model.BetTypeBustRank:
		def.Kind = model.BustRankBet{Rank: model.Rank(s.Rank)}
	case model.BetTypeBustJoker:
		def.Kind = model.BustJokerBet{}
	case model.BetTypeCount:
		def.Kind = model.CountBet{Min: s.CountMin, Max: s.CountMax, Open: s.OpenEnded}
	default:
		return def, fmt.Errorf("unknown type %q", s.Type)
	}
	if def.Label == "" {
		def.Label = s.Key
	}
	return def, nil
}

// specificCardDefinitions поля на каждую из 40 номинальных карт
func specificCardDefinitions(payout int, lock bool) []model.BetDefinition {
	if payout == 0 {
		payout = specificCardPayout
	}
	defs := make([]model.BetDefinition, 0, len(model.NumberRanks)*len(model.Suits))
	for _, suit := range model.Suits {
		for _, rank := range model.NumberRanks {
			c := model.NewCard(rank, suit)
			defs = append(defs, model.BetDefinition{
				Key:            fmt.Sprintf("card-%s-%s", rank, suit.Name()),
				Label:          c.Label(),
				Payout:         payout,
				LockDuringHand: lock,
				Kind:           model.SpecificCardBet{Rank: rank, Suit: suit},
			})
		}
	}
	return defs
}

func (g *gameConfig) Denominations() []int {
	return append([]int(nil), g.file.Table.Denominations...)
}

func (g *gameConfig) InitialBankroll() int { return g.file.Table.InitialBankroll }

func (g *gameConfig) DealDelay() time.Duration { return g.file.Table.DealDelay }

func (g *gameConfig) DealDelayStep() time.Duration { return g.file.Table.DealDelayStep }

func (g *gameConfig) HistorySize() int { return g.file.Table.HistorySize }

func (g *gameConfig) BankrollHistorySize() int { return g.file.Table.BankrollHistory }

func (g *gameConfig) PlaythroughRate() int { return g.file.Table.PlaythroughRate }

func (g *gameConfig) Paytables() []model.Paytable {
	out := make([]model.Paytable, 0, len(g.file.Paytables))
	for _, p := range g.file.Paytables {
		out = append(out, model.Paytable{ID: p.ID, Name: p.Name, Steps: append([]int(nil), p.Steps...)})
	}
	return out
}

func (g *gameConfig) DefaultPaytable() string { return g.file.DefaultPaytable }

func (g *gameConfig) BetDefinitions() []model.BetDefinition {
	return append([]model.BetDefinition(nil), g.defs...)
}

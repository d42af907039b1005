package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/config"
	"github.com/blackwell-systems/ratingscope/internal/output"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", format)
	}
}

// render writes v as JSON, or the text table built by text.
func render(w io.Writer, format string, v interface{}, text func() string) error {
	if format == formatJSON {
		return output.WriteJSON(w, v)
	}
	_, err := fmt.Fprint(w, text())
	return err
}

// session bundles what an analysis command needs.
type session struct {
	cfg      *config.Config
	store    *store.Store
	analyzer *analyzer.Analyzer
}

// openSession loads the configuration and opens the store.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, store: st, analyzer: analyzer.New(st)}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// checkState rejects a --state value that no stored restaurant has.
func (s *session) checkState(state string) error {
	if state == "" {
		return nil
	}

	states, err := s.store.ListStates()
	if err != nil {
		return err
	}
	for _, st := range states {
		if st == state {
			return nil
		}
	}

	if len(states) == 0 {
		return fmt.Errorf("unknown state %q: no restaurant has a state (import restaurants with a state column)", state)
	}
	return fmt.Errorf("unknown state %q (known: %s)", state, strings.Join(states, ", "))
}

func (s *session) matcher() *analyzer.BrandMatcher {
	return analyzer.NewBrandMatcher(s.cfg.Brand, s.cfg.Competitors)
}

func (s *session) thresholds() analyzer.ChainThresholds {
	return analyzer.ChainThresholds{National: s.cfg.NationalThreshold}
}

func (s *session) window() analyzer.YearWindow {
	return analyzer.YearWindow{From: s.cfg.Window.From, To: s.cfg.Window.To}
}

// brandTitle describes a brand comparison, e.g. "Subway vs Jimmy John, Jersey Mike".
func brandTitle(m *analyzer.BrandMatcher, state string) string {
	title := m.Brand() + " vs " + strings.Join(m.Competitors(), ", ")
	if state != "" {
		title += " in " + state
	}
	return title
}

// Package match runs one refereed match end to end: it resolves the variant
// and both agents, loads sandboxes, plays and reports.
package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
	"github.com/iamasit07/4-in-a-row/arena/pkg/uid"
)

var ErrBadRequest = errors.New("bad match request")

// VariantSource resolves a variant by name.
type VariantSource interface {
	Get(ctx context.Context, name string) (domain.Variant, error)
}

type Request struct {
	Variant string    `json:"variant"`
	Agents  [2]string `json:"agents"`
}

type Report struct {
	MatchID    string          `json:"match_id"`
	Variant    domain.Variant  `json:"variant"`
	Agents     [2]string       `json:"agents"`
	Outcome    domain.Outcome  `json:"outcome"`
	Board      domain.Snapshot `json:"board"`
	Moves      int             `json:"moves"`
	Fault      string          `json:"fault,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

type Config struct {
	Limits         sandbox.Limits
	MatchTimeout   time.Duration
	AgentCacheSize int
}

type Service struct {
	variants  VariantSource
	artifacts *cachedArtifacts
	cfg       Config
	compiled  wazero.CompilationCache
	live      *Registry
	logger    *zap.Logger
}

func NewService(variants VariantSource, artifacts ArtifactSource, cfg Config, logger *zap.Logger) (*Service, error) {
	cached, err := newCachedArtifacts(artifacts, cfg.AgentCacheSize)
	if err != nil {
		return nil, err
	}
	cfg.Limits = cfg.Limits.WithDefaults()
	return &Service{
		variants:  variants,
		artifacts: cached,
		cfg:       cfg,
		compiled:  wazero.NewCompilationCache(),
		live:      NewRegistry(logger),
		logger:    logger,
	}, nil
}

func (s *Service) Live() *Registry { return s.live }

// Close cancels live matches and releases compiled code.
func (s *Service) Close(ctx context.Context) error {
	s.live.CancelAll()
	return s.compiled.Close(ctx)
}

// Run plays one match. A returned error means no outcome was produced: the
// request was invalid, an agent could not be loaded, or ctx ended the match.
func (s *Service) Run(ctx context.Context, req Request, observer referee.Observer) (*Report, error) {
	if req.Agents[0] == "" || req.Agents[1] == "" {
		return nil, fmt.Errorf("%w: two agents are required", ErrBadRequest)
	}
	variant, err := s.variants.Get(ctx, req.Variant)
	if err != nil {
		return nil, err
	}

	matchID := uid.NewMatchID()
	logger := s.logger.With(zap.String("match_id", matchID), zap.String("variant", variant.Name))

	if s.cfg.MatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.MatchTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	agents, closeAgents, err := s.loadAgents(ctx, req.Agents, logger)
	if err != nil {
		return nil, err
	}
	defer closeAgents()

	startedAt := time.Now()
	s.live.add(LiveMatch{ID: matchID, Variant: variant, Agents: req.Agents, StartedAt: startedAt}, cancel)
	defer s.live.remove(matchID)

	track := referee.ObserverFunc(func(turn referee.Turn) {
		s.live.update(matchID, turn.Number, turn.Board)
		if observer != nil {
			observer.OnTurn(turn)
		}
	})

	// the turn timeout is a backstop for house agents; sandboxes enforce
	// their own limit
	ref, err := referee.New(variant, agents[0], agents[1],
		referee.WithLogger(logger),
		referee.WithObserver(track),
		referee.WithTurnTimeout(2*s.cfg.Limits.Timeout),
	)
	if err != nil {
		return nil, err
	}

	res, err := ref.Play(ctx)
	if err != nil {
		logger.Warn("match aborted", zap.Error(err))
		return nil, err
	}

	report := &Report{
		MatchID:    matchID,
		Variant:    variant,
		Agents:     req.Agents,
		Outcome:    res.Outcome,
		Board:      res.Board,
		Moves:      res.Moves,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if res.Fault != nil {
		report.Fault = res.Fault.Error()
	}
	return report, nil
}

// loadAgents resolves both agents concurrently. If either fails the other is
// closed and the error is returned.
func (s *Service) loadAgents(ctx context.Context, names [2]string, logger *zap.Logger) ([2]referee.Agent, func(), error) {
	var (
		agents    [2]referee.Agent
		sandboxes [2]*sandbox.Agent
	)
	closeAll := func() {
		for _, sb := range sandboxes {
			if sb != nil {
				sb.Close(context.Background())
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if d, ok := bot.ParseName(name); ok {
				a, err := bot.New(d)
				agents[i] = a
				return err
			}
			if strings.HasPrefix(name, bot.Prefix) {
				return fmt.Errorf("%w: unknown house agent %q", ErrBadRequest, name)
			}

			wasm, err := s.artifacts.GetArtifact(gctx, name)
			if err != nil {
				return err
			}
			sb, err := sandbox.Load(gctx, name, wasm, s.cfg.Limits,
				sandbox.WithCompilationCache(s.compiled),
				sandbox.WithLogger(logger.With(zap.String("player", domain.PlayerID(i+1).String()))))
			if err != nil {
				return err
			}
			sandboxes[i] = sb
			agents[i] = sb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeAll()
		logger.Warn("agent load failed", zap.Error(err))
		return agents, nil, err
	}
	return agents, closeAll, nil
}

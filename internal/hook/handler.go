package hook

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/audit"
	"github.com/ppiankov/truthgate/internal/config"
	"github.com/ppiankov/truthgate/internal/gates"
	"github.com/ppiankov/truthgate/internal/model"
	"github.com/ppiankov/truthgate/internal/policy"
	"github.com/ppiankov/truthgate/internal/truth"
)

// Handler runs the whole hook pipeline: decode, load state, classify,
// evaluate, emit. Every failure degrades to allow.
type Handler struct {
	Config  *config.Config
	Catalog *gates.Catalog
	Logger  *zap.Logger
	Audit   *audit.Log

	// Getwd resolves an empty cwd. Defaults to os.Getwd.
	Getwd func() (string, error)
}

// New builds a Handler from config. Problems loading the catalog or opening
// the audit log are logged and the handler falls back to defaults.
func New(cfg *config.Config, logger *zap.Logger) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handler{Config: cfg, Logger: logger}

	catalog, err := gates.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Warn("catalog load failed, using built-in patterns",
			zap.String("path", cfg.Catalog.Path), zap.Error(err))
		catalog = gates.NewDefault()
	}
	h.Catalog = catalog

	if cfg.Audit.Path != "" {
		l, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			logger.Warn("audit log unavailable",
				zap.String("path", cfg.Audit.Path), zap.Error(err))
		} else {
			h.Audit = l
		}
	}
	return h
}

// Close releases the audit log.
func (h *Handler) Close() error {
	if h.Audit != nil {
		return h.Audit.Close()
	}
	return nil
}

// Handle reads one request from stdin and writes a deny payload to stdout
// when the action is blocked. It never fails; the returned verdict is for
// callers that want to log or test it.
func (h *Handler) Handle(ctx context.Context, stdin io.Reader, stdout io.Writer) (v model.Verdict) {
	logger := h.logger()
	v = allow("gate.none")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("hook panicked, allowing", zap.Any("panic", r))
			v = allow("gate.none")
		}
	}()

	if h.Config != nil && h.Config.Disabled {
		logger.Debug("truthgate disabled")
		return v
	}
	if err := ctx.Err(); err != nil {
		return v
	}

	in, err := ParseInput(stdin)
	if err != nil {
		logger.Warn("unreadable hook input, allowing", zap.Error(err))
		return v
	}

	action := in.Action()
	if action == nil {
		return v
	}

	cwd := in.Cwd
	if cwd == "" {
		getwd := h.Getwd
		if getwd == nil {
			getwd = os.Getwd
		}
		if cwd, err = getwd(); err != nil {
			logger.Warn("cannot resolve working directory, allowing", zap.Error(err))
			return v
		}
	}

	snap := truth.Load(cwd)
	v = policy.Evaluate(action, snap.State, h.Catalog)

	logger.Debug("evaluated",
		zap.String("tool", action.Tool),
		zap.String("resource", action.Resource()),
		zap.String("decision", string(v.Decision)),
		zap.String("policy_id", v.PolicyID),
		zap.String("state", snap.Path),
	)

	if v.Gate != "" {
		h.record(in, cwd, action, v, snap)
	}

	if !v.Allowed() {
		if err := WriteDeny(stdout, v.Reason); err != nil {
			logger.Warn("failed to write deny", zap.Error(err))
		}
	}
	return v
}

func (h *Handler) record(in *Input, cwd string, action *model.Action, v model.Verdict, snap truth.Snapshot) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(audit.AuditEntry{
		SessionID: in.SessionID,
		Cwd:       cwd,
		Action:    audit.AuditAction{Tool: action.Tool, Resource: action.Resource()},
		Gate:      string(v.Gate),
		Decision:  string(v.Decision),
		Reason:    v.Reason,
		PolicyID:  v.PolicyID,
		StatePath: snap.Path,
		StateHash: snap.Hash,
	})
	if err != nil {
		h.logger().Warn("audit record failed", zap.Error(err))
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func allow(policyID string) model.Verdict {
	return model.Verdict{Decision: model.Allow, PolicyID: policyID}
}

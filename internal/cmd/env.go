package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/visadesk/internal/api"
	"github.com/nhle/visadesk/internal/credential"
	"github.com/nhle/visadesk/internal/logging"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run `visadesk login` first")

// env holds the collaborators every command needs.
type env struct {
	cfg      *model.AppConfig
	client   *api.Client
	session  *session.Manager
	closeLog func()
}

func newEnv() (*env, error) {
	cfg, errCfg := model.LoadConfig(cfgFile)
	if errCfg != nil {
		return nil, errCfg
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = logging.Debug
	}
	closeLog, errLog := logging.Setup(cfg.Log.File, level)
	if errLog != nil {
		return nil, errLog
	}

	ring, errRing := credential.Open(model.ConfigDir())
	if errRing != nil {
		closeLog()
		return nil, errRing
	}

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSec)*time.Second)
	manager := session.NewManager(client, credential.NewStore(ring))
	client.UseAuth(manager)

	return &env{
		cfg:      cfg,
		client:   client,
		session:  manager,
		closeLog: closeLog,
	}, nil
}

// requireSession restores the stored session or fails with a hint.
func (e *env) requireSession(ctx context.Context) (*model.User, error) {
	ok, err := e.session.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotSignedIn
	}
	return e.session.User(), nil
}

func (e *env) Close() {
	e.closeLog()
}


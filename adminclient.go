// Package adminclient wires the admin backend SDK together: durable
// storage, the request pipeline, the per-resource facades and the session
// store, bound so that every authenticated call carries the current token
// and a 401 anywhere triggers exactly one coordinated logout.
package adminclient

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-admin-client/auth"
	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/jrsteele09/go-admin-client/storage"
	"github.com/jrsteele09/go-admin-client/tenants"
)

const stateFileName = "session.json"

// Options configures an App.
type Options struct {
	BaseURL        string
	DataFolder     string
	DownloadFolder string
	Timeout        time.Duration
	NoticeTTL      time.Duration
	Logger         zerolog.Logger
	OnSessionEnd   func() // Fired once when a 401 forces the session out
	Retry          *client.RetryPolicy
}

// App is the assembled client: one pipeline, one session store, the domain
// facades and the notice center.
type App struct {
	Client  *client.Client
	Session *session.Store
	Auth    *auth.Service
	Tenants *tenants.Service
	Notices *session.NoticeCenter
}

// New builds an App. The session store is created last so it can restore
// from storage; the pipeline reaches it through late-bound hooks, keeping
// the store the single writer of session state.
func New(opts Options) *App {
	notices := session.NewNoticeCenter(opts.NoticeTTL)
	persist := storage.New(filepath.Join(opts.DataFolder, stateFileName), opts.Logger)

	var store *session.Store
	clientOpts := []client.Option{
		client.WithLogger(opts.Logger),
		client.WithNotifier(notices),
		client.WithDownloadDir(opts.DownloadFolder),
		client.WithTokenSource(client.TokenSourceFunc(func() string {
			if store == nil {
				return ""
			}
			return store.AccessToken()
		})),
		client.WithUnauthorizedHandler(client.UnauthorizedFunc(func() {
			if store != nil {
				store.Invalidate()
			}
		})),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(opts.Timeout))
	}
	if opts.Retry != nil {
		clientOpts = append(clientOpts, client.WithRetryPolicy(*opts.Retry))
	}

	cl := client.New(opts.BaseURL, clientOpts...)
	authSvc := auth.New(cl)

	storeOpts := []session.StoreOption{
		session.WithLogger(opts.Logger),
		session.WithNotices(notices),
	}
	if opts.OnSessionEnd != nil {
		storeOpts = append(storeOpts, session.WithExpiredFunc(opts.OnSessionEnd))
	}
	store = session.NewStore(authSvc, persist, storeOpts...)

	return &App{
		Client:  cl,
		Session: store,
		Auth:    authSvc,
		Tenants: tenants.New(cl),
		Notices: notices,
	}
}

// Close releases background resources (notice timers).
func (a *App) Close() {
	a.Notices.Close()
}

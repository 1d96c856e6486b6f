package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const DefaultAPIURL = "https://api.github.com"

// ErrUnknownUser is shown to users verbatim.
var ErrUnknownUser = errors.New("Could not find GitHub user")

type Options struct {
	APIURL            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Parallelism       int
}

// GitHub resolves usernames against the GitHub REST API using the caller's access token.
type GitHub struct {
	apiURL      string
	base        *http.Client
	limiter     *rate.Limiter
	parallelism int
}

func New(opts Options) *GitHub {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	return &GitHub{
		apiURL:      strings.TrimRight(opts.APIURL, "/"),
		base:        &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		parallelism: opts.Parallelism,
	}
}

type githubUser struct {
	ID      int64  `json:"id"`
	Login   string `json:"login"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

func (u githubUser) participant() domain.Participant {
	return domain.Participant{
		GHID:         u.ID,
		Username:     u.Login,
		Name:         u.Name,
		Organization: strings.TrimPrefix(strings.TrimSpace(u.Company), "@"),
	}
}

// ResolveUsernames looks every name up, keeping the input order. The first failure wins.
func (g *GitHub) ResolveUsernames(ctx context.Context, names []string, token string) ([]domain.Participant, error) {
	client := g.client(ctx, token)
	out := make([]domain.Participant, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)
	for i, name := range names {
		eg.Go(func() error {
			p, err := g.fetch(egCtx, client, "/users/"+url.PathEscape(name))
			if err != nil {
				if errors.Is(err, errNotFound) {
					return fmt.Errorf("%w %q", ErrUnknownUser, name)
				}
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Me returns the participant owning token.
func (g *GitHub) Me(ctx context.Context, token string) (domain.Participant, error) {
	p, err := g.fetch(ctx, g.client(ctx, token), "/user")
	if err != nil {
		return domain.Participant{}, err
	}
	p.AccessToken = token
	return p, nil
}

var errNotFound = errors.New("github: not found")

func (g *GitHub) fetch(ctx context.Context, client *http.Client, path string) (domain.Participant, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Participant{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return domain.Participant{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("github: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Participant{}, errNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.Participant{}, fmt.Errorf("github: GET %s: %s", path, resp.Status)
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return domain.Participant{}, fmt.Errorf("github: decode %s: %w", path, err)
	}
	return u.participant(), nil
}

func (g *GitHub) client(ctx context.Context, token string) *http.Client {
	if token == "" {
		return g.base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

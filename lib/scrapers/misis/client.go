package misis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"misisid/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/misis")

const (
	DefaultBaseUrl    = "https://lk.misis.ru"
	DefaultTimeout    = time.Second * 30
	DefaultMaxRetries = 3

	signInPath = "/ru/users/sign_in"

	// the portal answers a rejected login with a 200 page containing
	// this phrase instead of a redirect
	authFailurePhrase = "Неверный логин или пароль"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// per-request timeout, defaults to DefaultTimeout
	Timeout time.Duration
	// total request attempts on network failure or status >= 400,
	// defaults to DefaultMaxRetries
	MaxRetries int
	// first retry delay, doubles up to RetryMaxWait between attempts,
	// defaults to 1s
	RetryWait time.Duration
	// defaults to 8s
	RetryMaxWait time.Duration
	// optional request/response dump sink for debugging
	InstrumentOutput restyutil.InstrumentOutput
}

// Client owns one logical portal session: it authenticates, keeps the
// session state private, and scrapes the profile page on demand. Not
// safe for concurrent use, every operation runs sequentially.
type Client struct {
	BaseUrl *url.URL
	// follows redirects, used for the token fetch and the profile page
	Http *resty.Client
	// stops at the first redirect so the login POST can inspect the
	// Location header
	NoRedirect *resty.Client

	session *Session
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = time.Second
	}
	if opts.RetryMaxWait == 0 {
		opts.RetryMaxWait = time.Second * 8
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	// both clients share one cookie jar so the session cookie set by
	// the login POST is sent on the profile fetch
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	build := func(followRedirects bool) *resty.Client {
		client := resty.New()
		client.SetBaseURL(opts.BaseUrl)
		client.SetCookieJar(jar)
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
		client.SetHeader("user-agent", userAgent)

		if followRedirects {
			client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
		} else {
			client.SetRedirectPolicy(resty.RedirectPolicyFunc(
				func(req *http.Request, via []*http.Request) error {
					return http.ErrUseLastResponse
				},
			))
		}

		client.SetTimeout(opts.Timeout)
		client.SetRetryCount(opts.MaxRetries - 1)
		client.SetRetryWaitTime(opts.RetryWait)
		client.SetRetryMaxWaitTime(opts.RetryMaxWait)
		client.AddRetryCondition(func(res *resty.Response, err error) bool {
			return err != nil || res.StatusCode() >= http.StatusBadRequest
		})

		restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)
		return client
	}

	return &Client{
		BaseUrl:    baseUrl,
		Http:       build(true),
		NoRedirect: build(false),
	}, nil
}

// Close releases the underlying network connections. The client can
// still be used afterwards, connections are re-acquired lazily.
func (c *Client) Close() {
	c.Http.GetClient().CloseIdleConnections()
	c.NoRedirect.GetClient().CloseIdleConnections()
}

// checkResponse turns exhausted retries into a network error carrying
// the last observed status.
func checkResponse(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, classify(err, KindNetwork, "request failed")
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return nil, &Error{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("HTTP %d: %s", res.StatusCode(), res.Status()),
			Status:  res.StatusCode(),
		}
	}
	return res, nil
}

func (c *Client) fetchAuthenticityToken(ctx context.Context) (string, error) {
	res, err := checkResponse(c.Http.R().
		SetContext(ctx).
		Get(signInPath))
	if err != nil {
		return "", err
	}
	return ExtractAuthenticityToken(res.Body())
}

// parseAccountID pulls the per-account path segment out of the
// post-login redirect target. The portal redirects successful logins
// to /ru/<account>/... and rejected ones back to the sign-in page.
func parseAccountID(location string) (string, error) {
	invalid := newError(KindAuthentication, "invalid login or password")

	if location == "" {
		return "", invalid
	}
	target, err := url.Parse(location)
	if err != nil {
		return "", invalid
	}
	if strings.Contains(target.Path, "sign_in") {
		return "", invalid
	}
	rest, ok := strings.CutPrefix(target.Path, "/ru/")
	if !ok {
		return "", invalid
	}
	accountID, _, _ := strings.Cut(rest, "/")
	if accountID == "" {
		return "", invalid
	}
	return accountID, nil
}

// Authenticate submits the credentials together with a freshly fetched
// anti-forgery token and derives the account id from the redirect
// target. A successful call replaces any previous session.
func (c *Client) Authenticate(ctx context.Context, login, password string) (Session, error) {
	creds, err := NewCredentials(login, password, false)
	if err != nil {
		return Session{}, err
	}
	return c.AuthenticateCredentials(ctx, creds)
}

// AuthenticateCredentials is Authenticate for callers that need
// control over the remember-me flag.
func (c *Client) AuthenticateCredentials(ctx context.Context, creds Credentials) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	// revalidate so a hand-built Credentials literal cannot bypass
	// the non-empty rules
	if err := validate.Struct(creds); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return Session{}, validationError(err)
	}

	token, err := c.fetchAuthenticityToken(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch authenticity token")
		return Session{}, err
	}

	rememberMe := "0"
	if creds.RememberMe {
		rememberMe = "1"
	}
	res, err := checkResponse(c.NoRedirect.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"user[login]":        creds.Login,
			"user[password]":     creds.Password,
			"user[remember_me]":  rememberMe,
			"commit":             "Войти",
			"utf8":               "✓",
			"authenticity_token": token,
		}).
		Post(signInPath))
	if err != nil {
		span.SetStatus(codes.Error, "login request failed")
		return Session{}, err
	}

	accountID, err := parseAccountID(res.Header().Get("Location"))
	if err != nil {
		span.SetStatus(codes.Error, "login rejected")
		return Session{}, err
	}

	// 302 is the observed success response; 200 with a valid redirect
	// target is accepted as well
	if res.StatusCode() != http.StatusFound && res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected login status")
		return Session{}, newErrorf(
			KindAuthentication, "unexpected response status: %d", res.StatusCode(),
		)
	}

	// some rejections come back as a plausible-looking page instead
	// of an error status
	if strings.Contains(res.String(), authFailurePhrase) {
		span.SetStatus(codes.Error, "login rejected")
		return Session{}, newError(KindAuthentication, "invalid login or password")
	}

	session, err := NewSession(accountID, token)
	if err != nil {
		span.SetStatus(codes.Error, "failed to construct session")
		return Session{}, classify(err, KindAuthentication, "failed to construct session")
	}
	c.session = &session

	slog.InfoContext(ctx, "authenticated", "login", creds.Login, "account_id", session.AccountID)
	return session, nil
}

// GetStudentInfo fetches and parses the profile page of the
// authenticated account. When the portal bounces the fetch back to the
// sign-in page the session is marked unauthenticated and every call
// fails with a session-expired error until Authenticate succeeds again.
func (c *Client) GetStudentInfo(ctx context.Context) (StudentInfo, error) {
	ctx, span := tracer.Start(ctx, "client:GetStudentInfo")
	defer span.End()

	if c.session == nil || !c.session.Authenticated {
		span.SetStatus(codes.Error, "not authenticated")
		return StudentInfo{}, newError(KindSessionExpired, "authentication required")
	}

	res, err := checkResponse(c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/ru/%s/profile", c.session.AccountID)))
	if err != nil {
		span.SetStatus(codes.Error, "profile request failed")
		return StudentInfo{}, err
	}

	finalUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	if strings.Contains(finalUrl, "sign_in") {
		c.session.Authenticated = false
		span.SetStatus(codes.Error, "session expired")
		return StudentInfo{}, newError(KindSessionExpired, "session expired")
	}

	info, err := ParseStudentProfile(res.Body())
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse profile")
		return StudentInfo{}, classify(err, KindParse, "failed to parse student info")
	}

	slog.InfoContext(ctx, "student info fetched", "full_name", info.FullName)
	return info, nil
}

// Session returns a copy of the current session state, or false when
// no authentication happened yet.
func (c *Client) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Client) IsAuthenticated() bool {
	return c.session != nil && c.session.Authenticated
}

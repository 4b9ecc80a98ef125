package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type PortalOptions struct {
	Login    string
	Password string
	// defaults to "s"
	AccountID string
	// defaults to "test-csrf-token"
	Token       string
	ProfileHTML string
	// answer a correct login with a 200 page carrying the failure
	// phrase instead of setting a session
	SoftFail bool
}

// Portal is an in-process stand-in for the MISIS personal account
// portal: a sign-in page carrying an anti-forgery token, a login POST
// that redirects to /ru/<account>/... on success and back to the
// sign-in page otherwise, and a cookie-guarded profile page.
type Portal struct {
	*httptest.Server
	Opts PortalOptions

	mu        sync.Mutex
	counts    map[string]int
	expired   bool
	loginForm url.Values
}

const sessionCookie = "_misis_session"

func NewPortal(t testing.TB, opts PortalOptions) *Portal {
	if opts.AccountID == "" {
		opts.AccountID = "s"
	}
	if opts.Token == "" {
		opts.Token = "test-csrf-token"
	}

	p := &Portal{
		Opts:   opts,
		counts: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ru/users/sign_in", p.handleSignIn)
	mux.HandleFunc(fmt.Sprintf("/ru/%s/profile", opts.AccountID), p.handleProfile)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// ExpireSession makes every following profile fetch bounce back to
// the sign-in page.
func (p *Portal) ExpireSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expired = true
}

// LastLoginForm returns the form values of the most recent login
// POST, or nil when none happened yet.
func (p *Portal) LastLoginForm() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginForm
}

// Count returns how many requests hit the given method and path.
func (p *Portal) Count(method, path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[method+" "+path]
}

func (p *Portal) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[r.Method+" "+r.URL.Path]++
}

func (p *Portal) handleSignIn(w http.ResponseWriter, r *http.Request) {
	p.record(r)

	if r.Method != http.MethodPost {
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><meta name="csrf-token" content="%s"></head>
<body><form action="/ru/users/sign_in" method="post"></form></body>
</html>`, p.Opts.Token)
		return
	}

	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	p.loginForm = r.PostForm
	p.mu.Unlock()

	// the portal's sign-in form posts the full field set, a submission
	// missing any of them is rejected like a forged one
	rememberMe := r.PostFormValue("user[remember_me]")
	accepted := r.PostFormValue("user[login]") == p.Opts.Login &&
		r.PostFormValue("user[password]") == p.Opts.Password &&
		r.PostFormValue("authenticity_token") == p.Opts.Token &&
		(rememberMe == "0" || rememberMe == "1") &&
		r.PostFormValue("commit") != "" &&
		r.PostFormValue("utf8") != ""

	if !accepted {
		w.Header().Set("Location", "/ru/users/sign_in")
		w.WriteHeader(http.StatusFound)
		return
	}
	if p.Opts.SoftFail {
		w.Header().Set("Location", fmt.Sprintf("/ru/%s/main", p.Opts.AccountID))
		io.WriteString(w, "<html><body>Неверный логин или пароль</body></html>")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: p.Opts.Token, Path: "/"})
	w.Header().Set("Location", fmt.Sprintf("/ru/%s/main", p.Opts.AccountID))
	w.WriteHeader(http.StatusFound)
}

func (p *Portal) handleProfile(w http.ResponseWriter, r *http.Request) {
	p.record(r)

	p.mu.Lock()
	expired := p.expired
	p.mu.Unlock()

	cookie, err := r.Cookie(sessionCookie)
	if expired || err != nil || cookie.Value != p.Opts.Token {
		http.Redirect(w, r, "/ru/users/sign_in", http.StatusFound)
		return
	}
	io.WriteString(w, p.Opts.ProfileHTML)
}

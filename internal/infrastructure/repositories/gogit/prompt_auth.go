package gogit

import (
	"fmt"
	gohttp "net/http"

	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/rios0rios0/secureclone/internal/domain/entities"
)

// promptAuth answers the HTTP basic-auth challenge by asking the prompter,
// the same way git asks its askpass program. Nothing is stored on disk.
type promptAuth struct {
	prompter entities.Prompter
}

var _ http.AuthMethod = (*promptAuth)(nil)

func (*promptAuth) Name() string {
	return "http-askpass"
}

func (a *promptAuth) String() string {
	return a.Name() + " - ****"
}

func (a *promptAuth) SetAuth(r *gohttp.Request) {
	if a.prompter == nil {
		return
	}
	origin := fmt.Sprintf("%s://%s", r.URL.Scheme, r.URL.Host)
	username := a.prompter.Respond(fmt.Sprintf("Username for '%s': ", origin))
	password := a.prompter.Respond(fmt.Sprintf("Password for '%s://%s@%s': ", r.URL.Scheme, username, r.URL.Host))
	r.SetBasicAuth(username, password)
}

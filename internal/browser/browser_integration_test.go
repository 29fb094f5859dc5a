//go:build integration

package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// twoPageForm has hero questions on page one and a modular question on
// page two; Next replaces the first page in place.
const twoPageForm = `<!doctype html>
<html><head>` + controlStyle + `</head><body>
<div id="page1">
  <div role="listitem">Which hero did you play?
    <div role="radio" aria-label="Iron Man" onclick="pick(this)"></div>
    <div role="radio" aria-label="Thor" onclick="pick(this)"></div>
  </div>
  <div role="listitem">Did you play a second hero?
    <div role="radio" aria-label="Yes" onclick="pick(this)"></div>
    <div role="radio" aria-label="No" onclick="pick(this)"></div>
  </div>
  <div role="button" onclick="next()">Next</div>
</div>
<script>
function pick(el) { el.setAttribute('aria-checked', 'true'); }
function next() {
  document.getElementById('page1').outerHTML =
    '<div role="listitem">Which modular sets?' +
    '<div role="checkbox" aria-label="Bomb Scare" onclick="pick(this)"></div></div>';
}
</script>
</body></html>`

const controlStyle = `<style>[role=radio],[role=checkbox],[role=button]{display:inline-block;min-width:24px;min-height:24px}</style>`

const modularPage = `<div role="listitem">Which modular sets?` +
	`<div role="checkbox" aria-label="Bomb Scare"></div></div>`

// delayedForm swaps in the next page a while after Next is clicked.
const delayedForm = `<!doctype html>
<html><head>` + controlStyle + `</head><body>
<div id="page1">
  <div role="listitem">Which hero did you play?
    <div role="radio" aria-label="Thor"></div>
  </div>
  <div role="button" onclick="next()">Next</div>
</div>
<script>
function next() {
  setTimeout(function() {
    document.getElementById('page1').outerHTML = '` + modularPage + `';
  }, 400);
}
</script>
</body></html>`

// postForm loads the next page with a form POST.
const postForm = `<!doctype html>
<html><head>` + controlStyle + `</head><body>
<form id="f" method="post" action="/page2">
  <div role="listitem">Which hero did you play?
    <div role="radio" aria-label="Thor"></div>
  </div>
  <div role="button" onclick="document.getElementById('f').submit()">Next</div>
</form>
</body></html>`

func openPage(t *testing.T, ctx context.Context, driver string) Page {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Driver = driver
	cfg.ElementTimeout = 3 * time.Second
	cfg.SettleTimeout = 10 * time.Second
	d, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	bctx, err := d.NewContext(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bctx.Close() })

	page, err := bctx.NewPage(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })
	return page
}

func TestDriversWaitForNextPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/delayed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, delayedForm)
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, postForm)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<!doctype html><html><head>"+controlStyle+"</head><body>"+modularPage+"</body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	for _, driver := range []string{DriverRod, DriverChromedp} {
		for _, path := range []string{"/delayed", "/post"} {
			t.Run(driver+path, func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				page := openPage(t, ctx, driver)

				require.NoError(t, page.Navigate(ctx, srv.URL+path))
				require.NoError(t, page.WaitIdle(ctx))
				before, err := page.Marker(ctx)
				require.NoError(t, err)
				require.Contains(t, before, "Which hero did you play?")

				require.NoError(t, page.Click(ctx, Query{Role: RoleButton}, "Next"))
				require.NoError(t, page.WaitChange(ctx, before))
				require.NoError(t, page.WaitIdle(ctx))

				ok, err := page.Exists(ctx, Query{Role: RoleCheckbox, Scope: "modular"})
				require.NoError(t, err)
				require.True(t, ok)
			})
		}
	}
}

func TestDrivers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, twoPageForm)
	}))
	defer srv.Close()

	for _, driver := range []string{DriverRod, DriverChromedp} {
		t.Run(driver, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			page := openPage(t, ctx, driver)

			require.NoError(t, page.Navigate(ctx, srv.URL))
			require.NoError(t, page.WaitIdle(ctx))

			heroes, err := page.Labels(ctx, Query{Role: RoleRadio, Scope: "which hero"})
			require.NoError(t, err)
			require.Equal(t, []string{"Iron Man", "Thor"}, heroes)

			require.NoError(t, page.Click(ctx, Query{Role: RoleRadio, Scope: "Which hero"}, "Thor"))
			require.NoError(t, page.Click(ctx, Query{Role: RoleRadio, Scope: "second hero"}, "No"))

			ok, err := page.Exists(ctx, Query{Role: RoleCheckbox})
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, page.Click(ctx, Query{Role: RoleButton}, "Next"))
			ok, err = page.Exists(ctx, Query{Role: RoleCheckbox})
			require.NoError(t, err)
			require.True(t, ok)

			_, err = page.Labels(ctx, Query{Role: RoleRadio, Scope: "Which hero"})
			require.Error(t, err)
		})
	}
}

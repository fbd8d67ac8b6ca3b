// Package probe answers liveness and readiness checks.
package probe

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type Options struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// Ready gates /ready; nil means always ready.
	Ready func() bool `json:"-"`
}

type status struct {
	Options
	Ready bool `json:"ready"`
}

// NewHandler serves /healthz, always 200, and /ready, 503 until
// options.Ready reports true.
func NewHandler(options Options) http.Handler {
	ready := func() bool {
		return options.Ready == nil || options.Ready()
	}

	write := func(w http.ResponseWriter, ok bool) {
		b, _ := json.Marshal(status{Options: options, Ready: ok}) //nolint:errchkjson

		w.Header().Set("Content-Type", "application/json")

		if ok {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		w.Write(b) //nolint:errcheck
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		write(w, true)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		write(w, ready())
	})

	return mux
}

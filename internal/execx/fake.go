package execx

import (
	"context"
	"strings"
	"sync"
)

// Response is what the fake returns for a matched invocation.
type Response struct {
	Code   int
	Output string
	Err    error
}

// Fake is a scripted Runner for tests. Responses are matched by the longest
// registered prefix of the space-joined argv; unmatched invocations succeed
// with empty output so tests only script what they care about.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]Response
	Paths     map[string]string // LookPath results; missing key means "not installed"
	Calls     []string          // every Run/Shell argv in order
}

func NewFake() *Fake {
	return &Fake{
		Responses: map[string]Response{},
		Paths:     map[string]string{},
	}
}

// On registers a response for any invocation whose argv starts with prefix.
func (f *Fake) On(prefix string, r Response) *Fake {
	f.Responses[prefix] = r
	return f
}

// Install marks name as present on the fake search path.
func (f *Fake) Install(name string) *Fake {
	f.Paths[name] = "/usr/bin/" + name
	return f
}

func (f *Fake) Run(_ context.Context, _ string, name string, args ...string) (int, string, error) {
	return f.dispatch(Argv(name, args...))
}

func (f *Fake) Shell(_ context.Context, _ string, script string) (int, string, error) {
	return f.dispatch(script)
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &notFoundError{name}
}

func (f *Fake) dispatch(argv string) (int, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, argv)

	best := ""
	for prefix := range f.Responses {
		if strings.HasPrefix(argv, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0, "", nil
	}
	r := f.Responses[best]
	return r.Code, r.Output, r.Err
}

// CalledWith reports whether any recorded invocation starts with prefix.
func (f *Fake) CalledWith(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return "executable not found on PATH: " + e.name }

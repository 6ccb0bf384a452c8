package http

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestRouterSourceIsGofmtted(t *testing.T) {
	t.Parallel()
	src, err := os.ReadFile("router.go")
	if err != nil {
		t.Fatalf("read router.go: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format router.go: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Fatalf("router.go is not gofmt-formatted")
	}
}

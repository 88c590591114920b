package httpadapter

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestApplyCORSHeaders(t *testing.T) {
	ctx := &app.RequestContext{}
	applyCORSHeaders(ctx)

	for header, want := range map[string]string{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  corsAllowMethods,
		"Access-Control-Allow-Headers":  corsAllowHeaders,
		"Access-Control-Expose-Headers": corsExposeHeaders,
	} {
		if got := string(ctx.Response.Header.Peek(header)); got != want {
			t.Fatalf("%s mismatch: got=%q want=%q", header, got, want)
		}
	}
}

func TestCORSMiddleware_AnswersPreflight(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.SetMethod(consts.MethodOptions)
	corsMiddleware()(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNoContent; got != want {
		t.Fatalf("preflight status: got=%d want=%d", got, want)
	}
	if !ctx.IsAborted() {
		t.Fatalf("preflight should abort the chain")
	}
}

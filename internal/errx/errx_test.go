package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestE(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		if got := E("bookmark.repo.GetBookmark", NotFound, nil); got != nil {
			t.Errorf("E(nil) = %v, want nil", got)
		}
	})

	t.Run("carries op kind and cause", func(t *testing.T) {
		root := errors.New("no rows")
		err := E("bookmark.repo.GetBookmark", NotFound, root)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected *errx.Error")
		}
		if e.Op != "bookmark.repo.GetBookmark" {
			t.Errorf("Op = %q", e.Op)
		}
		if e.Kind != NotFound {
			t.Errorf("Kind = %v, want NotFound", e.Kind)
		}
		if !errors.Is(err, root) {
			t.Error("cause not reachable through errors.Is")
		}
	})

	t.Run("every kind round-trips through KindOf", func(t *testing.T) {
		root := errors.New("x")
		for k := Unknown; k <= Internal; k++ {
			if got := KindOf(E("op", k, root)); got != k {
				t.Errorf("KindOf(E(%v)) = %v", k, got)
			}
		}
	})
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op only", &Error{Op: "bookmark.handler.Redirect", Kind: NotFound}, "bookmark.handler.Redirect"},
		{"cause only", &Error{Err: errors.New("boom")}, "boom"},
		{"op and cause", &Error{Op: "account.service.Login", Kind: Unauthorized, Err: errors.New("bad password")}, "account.service.Login: bad password"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOfAndOpOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantOp   string
	}{
		{"nil", nil, Unknown, ""},
		{"plain error", errors.New("plain"), Unknown, ""},
		{"direct", E("account.repo.CreateUser", Conflict, errors.New("dup")), Conflict, "account.repo.CreateUser"},
		{
			name:     "through fmt.Errorf",
			err:      fmt.Errorf("ctx: %w", E("auth.Verify", Unauthorized, errors.New("expired"))),
			wantKind: Unauthorized,
			wantOp:   "auth.Verify",
		},
		{
			name:     "outermost op wins",
			err:      E("bookmark.service.Create", Exhausted, E("bookmark.repo.CreateBookmark", Conflict, errors.New("dup"))),
			wantKind: Exhausted,
			wantOp:   "bookmark.service.Create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if got := OpOf(tt.err); got != tt.wantOp {
				t.Errorf("OpOf() = %q, want %q", got, tt.wantOp)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("op", nil); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}

	root := errors.New("connection refused")
	repo := E("bookmark.repo.ListBookmarks", Unavailable, root)
	svc := Wrap("bookmark.service.List", repo)
	handler := Wrap("bookmark.handler.List", svc)

	if got := KindOf(handler); got != Unavailable {
		t.Errorf("KindOf() = %v, want Unavailable", got)
	}
	if got := OpOf(handler); got != "bookmark.handler.List" {
		t.Errorf("OpOf() = %q", got)
	}
	if !errors.Is(handler, root) {
		t.Error("root cause lost through Wrap chain")
	}
	if got := KindOf(Wrap("op", errors.New("plain"))); got != Unknown {
		t.Errorf("plain error wrapped as %v, want Unknown", got)
	}
}

func TestKind_String(t *testing.T) {
	want := map[Kind]string{
		Unknown:      "Unknown",
		NotFound:     "NotFound",
		Conflict:     "Conflict",
		Invalid:      "Invalid",
		Unauthorized: "Unauthorized",
		RateLimited:  "RateLimited",
		Exhausted:    "Exhausted",
		Unavailable:  "Unavailable",
		Internal:     "Internal",
		Kind(99):     "Kind(99)",
	}
	for k, s := range want {
		if got := k.String(); got != s {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(k), got, s)
		}
	}
}

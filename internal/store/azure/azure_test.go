package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/stretchr/testify/require"

	"github.com/Chapsvision-dev/company-profile-store/internal/store"
)

func respErr(code bloberror.Code, status int) error {
	return &azcore.ResponseError{ErrorCode: string(code), StatusCode: status}
}

// Transport failures must land on exactly one taxonomy sentinel.
func TestClassify(t *testing.T) {
	s := &Store{container: "company-profiles", timeout: time.Second}

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"blob not found", respErr(bloberror.BlobNotFound, http.StatusNotFound), store.ErrNotFound},
		{"container not found", respErr(bloberror.ContainerNotFound, http.StatusNotFound), store.ErrNotFound},
		{"bare 404", &azcore.ResponseError{StatusCode: http.StatusNotFound}, store.ErrNotFound},
		{"authentication failed", respErr(bloberror.AuthenticationFailed, http.StatusForbidden), store.ErrAccessDenied},
		{"authorization failure", respErr(bloberror.AuthorizationFailure, http.StatusForbidden), store.ErrAccessDenied},
		{"permission mismatch", respErr(bloberror.AuthorizationPermissionMismatch, http.StatusForbidden), store.ErrAccessDenied},
		{"bare 401", &azcore.ResponseError{StatusCode: http.StatusUnauthorized}, store.ErrAccessDenied},
		{"bare 403", &azcore.ResponseError{StatusCode: http.StatusForbidden}, store.ErrAccessDenied},
		{"server busy", respErr(bloberror.ServerBusy, http.StatusServiceUnavailable), store.ErrUnavailable},
		{"deadline exceeded", context.DeadlineExceeded, store.ErrUnavailable},
		{"wrapped deadline", fmt.Errorf("download: %w", context.DeadlineExceeded), store.ErrUnavailable},
		{"plain transport error", errors.New("connection reset"), store.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.classify("op", "acme.json", tc.err)
			require.ErrorIs(t, got, tc.want)
		})
	}
}

func TestClassifyIsExclusive(t *testing.T) {
	s := &Store{container: "company-profiles", timeout: time.Second}

	err := s.classify("op", "acme.json", respErr(bloberror.BlobNotFound, http.StatusNotFound))
	require.NotErrorIs(t, err, store.ErrUnavailable)
	require.NotErrorIs(t, err, store.ErrAccessDenied)

	err = s.classify("op", "acme.json", respErr(bloberror.AuthorizationFailure, http.StatusForbidden))
	require.NotErrorIs(t, err, store.ErrNotFound)
	require.NotErrorIs(t, err, store.ErrUnavailable)
}

func TestOpCtxAppliesTimeout(t *testing.T) {
	s := &Store{container: "company-profiles", timeout: 50 * time.Millisecond}

	ctx, cancel := s.opCtx(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 25*time.Millisecond)

	// Zero timeout means the caller's context is used as-is.
	s = &Store{container: "company-profiles"}
	ctx, cancel = s.opCtx(context.Background())
	defer cancel()
	_, ok = ctx.Deadline()
	require.False(t, ok)
}

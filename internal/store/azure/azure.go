// Package azure implements the profile store on Azure Blob Storage: one
// <id>.json blob per record in a single container. It is the production
// backend and the migration destination.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/Chapsvision-dev/company-profile-store/internal/config"
	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
	"github.com/Chapsvision-dev/company-profile-store/internal/store"
)

// Store holds one service client for the backend's lifetime. The configured
// timeout bounds every individual network call.
type Store struct {
	client    *azblob.Client
	container string
	timeout   time.Duration
}

var _ store.Store = (*Store)(nil)

// New validates config, builds the client and ensures the container exists.
// Container creation tolerates already-exists and authorization failures
// (a container-scoped SAS cannot create containers).
func New(ctx context.Context, cfg config.AzureConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	s := &Store{client: client, container: cfg.Container, timeout: cfg.Timeout}

	cctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err = client.CreateContainer(cctx, cfg.Container, nil)
	if err != nil && !bloberror.HasCode(err,
		bloberror.ContainerAlreadyExists,
		bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch,
	) {
		return nil, s.classify("create container", cfg.Container, err)
	}
	log.Debug().
		Str("action", "azure_init").
		Str("container", cfg.Container).
		Dur("timeout", cfg.Timeout).
		Msg("blob backend ready")
	return s, nil
}

func (s *Store) Name() string { return store.NameAzure }

// opCtx bounds a single network call with the configured timeout.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Get(ctx context.Context, id string) (profile.Record, error) {
	if err := store.ValidateID(id); err != nil {
		return profile.Record{}, err
	}
	key := store.KeyFor(id)

	cctx, cancel := s.opCtx(ctx)
	defer cancel()
	resp, err := s.client.DownloadStream(cctx, s.container, key, nil)
	if err != nil {
		return profile.Record{}, s.classify("download", key, err)
	}
	data, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return profile.Record{}, s.classify("download", key, err)
	}
	rec, err := profile.Decode(data)
	if err != nil {
		return profile.Record{}, fmt.Errorf("profile %q: %v: %w", id, err, store.ErrCorruptData)
	}
	return rec, nil
}

// Put uploads the full payload in one shot; single-object writes are atomic
// on the service side, so readers never observe a partial blob.
func (s *Store) Put(ctx context.Context, id string, rec profile.Record) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	key := store.KeyFor(id)

	cctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err := s.client.UploadBuffer(cctx, s.container, key, rec.Encode(), nil)
	if err != nil {
		return s.classify("upload", key, err)
	}
	log.Debug().
		Str("action", "azure_put").
		Str("container", s.container).
		Str("key", key).
		Msg("profile uploaded")
	return nil
}

// Delete removes the blob. BlobNotFound counts as success.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	key := store.KeyFor(id)

	cctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err := s.client.DeleteBlob(cctx, s.container, key, nil)
	if err == nil || bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil
	}
	return s.classify("delete", key, err)
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := store.ValidateID(id); err != nil {
		return false, err
	}
	key := store.KeyFor(id)

	cctx, cancel := s.opCtx(ctx)
	defer cancel()
	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key)
	_, err := blobClient.GetProperties(cctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return false, nil
	}
	classified := s.classify("head", key, err)
	if errors.Is(classified, store.ErrNotFound) {
		return false, nil
	}
	return false, classified
}

// List walks the container pages and maps blob names back to ids. Objects
// outside the <id>.json convention are ignored.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		cctx, cancel := s.opCtx(ctx)
		page, err := pager.NextPage(cctx)
		cancel()
		if err != nil {
			return nil, s.classify("list", "", err)
		}
		for _, it := range page.Segment.BlobItems {
			if it.Name == nil {
				continue
			}
			if id, ok := store.IDFromKey(*it.Name); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// classify maps transport failures onto the shared store taxonomy.
func (s *Store) classify(op, key string, err error) error {
	where := s.container
	if key != "" {
		where += "/" + key
	}

	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
		return fmt.Errorf("%s %s: %w", op, where, store.ErrNotFound)
	case bloberror.HasCode(err,
		bloberror.AuthenticationFailed,
		bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch,
		bloberror.InsufficientAccountPermissions,
	):
		return fmt.Errorf("%s %s: %w", op, where, store.ErrAccessDenied)
	}

	var re *azcore.ResponseError
	if errors.As(err, &re) {
		switch {
		case re.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", op, where, store.ErrNotFound)
		case re.StatusCode == http.StatusUnauthorized || re.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s %s: %w", op, where, store.ErrAccessDenied)
		}
	}

	// Timeouts and anything else reaching the network count as unavailable.
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s %s: timeout after %s: %w", op, where, s.timeout, store.ErrUnavailable)
	}
	return fmt.Errorf("%s %s: %v: %w", op, where, err, store.ErrUnavailable)
}

func init() {
	store.Register(store.NameAzure, func(cfg config.Config) (store.Store, error) {
		return New(context.Background(), cfg.Azure)
	})
}

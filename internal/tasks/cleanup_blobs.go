package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/kuttab/kuttab/internal/storage"
)

// orphanGracePeriod protects blobs that were uploaded moments ago and whose
// database rows have not committed yet.
const orphanGracePeriod = time.Hour

// BlobReferences lists every blob URL the database still points at.
type BlobReferences interface {
	AllPDFURLs() ([]string, error)
	AllAudioURLs() ([]string, error)
	AllAvatarURLs() ([]string, error)
}

// BlobStore is the object store plus the reverse mapping from public URL to
// storage path.
type BlobStore interface {
	storage.Client
	StoragePath(publicURL string) string
}

// CleanupBlobsTask deletes stored objects that no database row references.
// Uploads roll their blobs back on failure, but a crash between the two
// writes can still leak files; this sweep is the backstop.
type CleanupBlobsTask struct{}

func (t CleanupBlobsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_blobs",
		MaxAttempts: 2,
		Backoff:     10 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

type blobReferenceLister func() ([]string, error)

// CleanupBlobsProcessor creates the processor for CleanupBlobsTask.
func CleanupBlobsProcessor(refs BlobReferences, blobs BlobStore) backlite.QueueProcessor[CleanupBlobsTask] {
	return func(ctx context.Context, task CleanupBlobsTask) error {
		if refs == nil || blobs == nil {
			return fmt.Errorf("blob cleanup stores not configured")
		}

		referenced := make(map[string]bool)
		for _, list := range []blobReferenceLister{refs.AllPDFURLs, refs.AllAudioURLs, refs.AllAvatarURLs} {
			urls, err := list()
			if err != nil {
				return fmt.Errorf("list blob references: %w", err)
			}
			for _, url := range urls {
				if path := blobs.StoragePath(url); path != "" {
					referenced[path] = true
				}
			}
		}

		objects, err := blobs.List(ctx, "")
		if err != nil {
			return fmt.Errorf("list stored objects: %w", err)
		}

		cutoff := time.Now().Add(-orphanGracePeriod)
		deleted := 0
		for _, obj := range objects {
			if referenced[obj.Path] || obj.ModifiedAt.After(cutoff) {
				continue
			}
			if err := blobs.Delete(ctx, obj.Path); err != nil {
				log.Printf("[TASK ERROR] Failed to delete orphaned blob %s: %v", obj.Path, err)
				continue
			}
			deleted++
		}

		if deleted > 0 {
			log.Printf("[TASK] Deleted %d orphaned blobs", deleted)
		}
		return nil
	}
}

// NewCleanupBlobsQueue creates a backlite queue for orphaned blob cleanup.
func NewCleanupBlobsQueue(refs BlobReferences, blobs BlobStore) backlite.Queue {
	return backlite.NewQueue(CleanupBlobsProcessor(refs, blobs))
}

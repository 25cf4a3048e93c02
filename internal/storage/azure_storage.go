package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureFetcher downloads frames from Azure Blob Storage with a shared key.
// URLs have the form https://<account>.blob.core.windows.net/<container>/<blob>.
type AzureFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureFetcher creates a fetcher for the given storage account.
func NewAzureFetcher(accountName, accountKey string, maxBytes int64) (*AzureFetcher, error) {
	return NewAzureFetcherWithServiceURL(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		accountName, accountKey, maxBytes)
}

// NewAzureFetcherWithServiceURL points the client at another endpoint, such
// as a local storage emulator.
func NewAzureFetcherWithServiceURL(serviceURL, accountName, accountKey string, maxBytes int64) (*AzureFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureFetcher{client: client, maxBytes: maxBytes}, nil
}

func (s *AzureFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	container, blob, err := parseBlobURL(blobURL)
	if err != nil {
		return nil, &FetchError{URL: blobURL, Err: err}
	}

	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, &FetchError{URL: blobURL, Err: fmt.Errorf("download failed: %w", err)}
	}
	body := resp.Body
	defer body.Close()

	img, err := decodeLimited(body, s.maxBytes)
	if err != nil {
		return nil, &FetchError{URL: blobURL, Err: err}
	}
	return img, nil
}

// parseBlobURL splits the path of a blob URL into container and blob name.
// Blob names may contain slashes.
func parseBlobURL(blobURL string) (container, blob string, err error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	container, blob, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: want /<container>/<blob>", blobURL)
	}
	return container, blob, nil
}

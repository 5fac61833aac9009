package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobLoader reads dataset definitions out of an Azure Blob Storage
// container so a fleet's definitions can live next to the data they
// describe.
type BlobLoader struct {
	client    *azblob.Client
	container string
}

// NewBlobLoader connects to accountURL (https://<account>.blob.core.windows.net)
// using the default credential chain. When AZURE_STORAGE_CONNECTION_STRING is
// set it takes precedence and accountURL may be empty.
func NewBlobLoader(accountURL, container string) (*BlobLoader, error) {
	if container == "" {
		return nil, fmt.Errorf("container name is required")
	}

	if conn := os.Getenv("AZURE_STORAGE_CONNECTION_STRING"); conn != "" {
		client, err := azblob.NewClientFromConnectionString(conn, nil)
		if err != nil {
			return nil, fmt.Errorf("connecting with connection string: %w", err)
		}
		return &BlobLoader{client: client, container: container}, nil
	}

	if accountURL == "" {
		return nil, fmt.Errorf("account URL is required when AZURE_STORAGE_CONNECTION_STRING is not set")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("acquiring azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &BlobLoader{client: client, container: container}, nil
}

// Load lists every *.yaml / *.yml blob in the container and registers the
// datasets they define, in blob-name order so runs are reproducible.
func (l *BlobLoader) Load(ctx context.Context, reg *Registry) error {
	var names []string
	pager := l.client.NewListBlobsFlatPager(l.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing container %s: %w", l.container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if isDefinitionFile(*item.Name) {
				names = append(names, *item.Name)
			}
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := l.download(ctx, name)
		if err != nil {
			return err
		}
		source := strings.TrimSuffix(l.client.URL(), "/") + "/" + l.container + "/" + name
		if err := reg.AddDocument(data, source); err != nil {
			return err
		}
	}
	return nil
}

func (l *BlobLoader) download(ctx context.Context, name string) ([]byte, error) {
	resp, err := l.client.DownloadStream(ctx, l.container, name, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}
	return data, nil
}

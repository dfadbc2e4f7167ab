package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avelorn/storefront/internal/models"
)

func errResponse(status string) error {
	return fmt.Errorf("elasticsearch error: %s", status)
}

// Indexer mirrors catalog writes into the search index, best-effort.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (i *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: marshal product %d: %w", p.ID, err)
	}

	res, err := i.Client.Index(
		i.Index,
		bytes.NewReader(data),
		i.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		i.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errResponse(res.Status())
	}
	return nil
}

func (i *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	res, err := i.Client.Delete(
		i.Index,
		strconv.FormatUint(uint64(id), 10),
		i.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	defer res.Body.Close()

	// A document missing from the index is already the state we want.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return errResponse(res.Status())
	}
	return nil
}

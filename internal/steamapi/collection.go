package steamapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workshopdl/internal/config"
	"workshopdl/internal/logging"
	"workshopdl/internal/services"
)

// ErrInvalidCollectionRef marks a collection reference that carries no usable ID.
var ErrInvalidCollectionRef = errors.New("invalid collection reference")

// CollectionChild is one member of a collection.
type CollectionChild struct {
	PublishedFileID string `json:"publishedfileid"`
	SortOrder       int    `json:"sortorder"`
	FileType        int    `json:"filetype"`
}

// CollectionDetail describes one requested collection. Children is nil when
// the API omitted the array (unknown or private collection).
type CollectionDetail struct {
	PublishedFileID string            `json:"publishedfileid"`
	Result          int               `json:"result"`
	Children        []CollectionChild `json:"children"`
}

// CollectionDetailsResponse models GetCollectionDetails.
type CollectionDetailsResponse struct {
	Response *struct {
		Result            int                `json:"result"`
		ResultCount       int                `json:"resultcount"`
		CollectionDetails []CollectionDetail `json:"collectiondetails"`
	} `json:"response"`
}

// ItemIDs flattens every child of every returned collection, in API order.
// The response must carry the full response/collectiondetails/children shape
// and every child must be a numeric published file ID.
func (r *CollectionDetailsResponse) ItemIDs() ([]string, error) {
	if r == nil || r.Response == nil {
		return nil, errors.New("response object missing")
	}
	if r.Response.CollectionDetails == nil {
		return nil, errors.New("response.collectiondetails missing")
	}
	var ids []string
	for idx, detail := range r.Response.CollectionDetails {
		if detail.Children == nil {
			return nil, fmt.Errorf("response.collectiondetails[%d].children missing (result %d)", idx, detail.Result)
		}
		for childIdx, child := range detail.Children {
			id := strings.TrimSpace(child.PublishedFileID)
			field := fmt.Sprintf("response.collectiondetails[%d].children[%d].publishedfileid", idx, childIdx)
			if err := config.ValidateNumericID(field, id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseCollectionID extracts the collection ID from a bare ID or a workshop
// URL of the form ...?id=<id>[&...].
func ParseCollectionID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCollectionRef)
	}
	lower := strings.ToLower(ref)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return checkCollectionID(ref)
	}
	_, after, found := strings.Cut(ref, "?id=")
	if !found {
		return "", fmt.Errorf("%w: %q has no ?id= parameter", ErrInvalidCollectionRef, ref)
	}
	if end := strings.IndexAny(after, "&#"); end >= 0 {
		after = after[:end]
	}
	if after == "" {
		return "", fmt.Errorf("%w: %q has an empty id", ErrInvalidCollectionRef, ref)
	}
	return checkCollectionID(after)
}

func checkCollectionID(id string) (string, error) {
	if err := config.ValidateNumericID("collection id", id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCollectionRef, err)
	}
	return id, nil
}

// CollectionDetails fetches the raw GetCollectionDetails payload for one collection ID.
func (c *Client) CollectionDetails(ctx context.Context, id string) (*CollectionDetailsResponse, error) {
	var payload CollectionDetailsResponse
	resp, err := c.postForm(ctx, collectionDetailsPath, map[string]string{
		"collectioncount":     "1",
		"publishedfileids[0]": id,
	}, &payload)
	if err != nil {
		return nil, services.Wrap(services.ErrCollectionResolution, "steamapi", "GetCollectionDetails", "collection "+id, err)
	}
	if !resp.IsSuccess() {
		return nil, services.Wrap(services.ErrCollectionResolution, "steamapi", "GetCollectionDetails",
			fmt.Sprintf("collection %s: unexpected status %s", id, resp.Status()), nil)
	}
	return &payload, nil
}

// CollectionItems resolves ref to the ordered list of member item IDs.
func (c *Client) CollectionItems(ctx context.Context, ref string) ([]string, error) {
	id, err := ParseCollectionID(ref)
	if err != nil {
		return nil, services.Wrap(services.ErrCollectionResolution, "steamapi", "parse reference", "", err)
	}
	payload, err := c.CollectionDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := payload.ItemIDs()
	if err != nil {
		return nil, services.Wrap(services.ErrCollectionResolution, "steamapi", "GetCollectionDetails", "collection "+id, err)
	}
	c.logger.Info("collection resolved",
		logging.String(logging.FieldCollectionID, id),
		logging.Int("item_count", len(ids)),
	)
	return ids, nil
}

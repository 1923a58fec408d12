package steamapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"workshopdl/internal/services"
)

// ItemDetail is the subset of GetPublishedFileDetails used for display.
type ItemDetail struct {
	PublishedFileID string `json:"publishedfileid"`
	Result          int    `json:"result"`
	Title           string `json:"title"`
	FileSize        string `json:"file_size"`
	TimeUpdated     int64  `json:"time_updated"`
}

// Size returns the reported payload size in bytes, or 0 when unknown.
func (d ItemDetail) Size() int64 {
	size, err := strconv.ParseInt(strings.TrimSpace(d.FileSize), 10, 64)
	if err != nil {
		return 0
	}
	return size
}

type fileDetailsResponse struct {
	Response struct {
		Result               int          `json:"result"`
		PublishedFileDetails []ItemDetail `json:"publishedfiledetails"`
	} `json:"response"`
}

// ItemDetails looks up metadata for ids, keyed by item ID. Items the API does
// not know about are absent from the map.
func (c *Client) ItemDetails(ctx context.Context, ids []string) (map[string]ItemDetail, error) {
	details := make(map[string]ItemDetail, len(ids))
	if len(ids) == 0 {
		return details, nil
	}
	form := map[string]string{"itemcount": strconv.Itoa(len(ids))}
	for i, id := range ids {
		form[fmt.Sprintf("publishedfileids[%d]", i)] = id
	}

	var payload fileDetailsResponse
	resp, err := c.postForm(ctx, fileDetailsPath, form, &payload)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "steamapi", "GetPublishedFileDetails", "", err)
	}
	if !resp.IsSuccess() {
		return nil, services.Wrap(services.ErrExternalTool, "steamapi", "GetPublishedFileDetails",
			"unexpected status "+resp.Status(), nil)
	}
	for _, detail := range payload.Response.PublishedFileDetails {
		if detail.Result != 1 {
			continue
		}
		details[detail.PublishedFileID] = detail
	}
	return details, nil
}

// Ping checks that the API host answers. It is used by the check command.
func (c *Client) Ping(ctx context.Context) error {
	var payload struct {
		ServerTime int64 `json:"servertime"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		ForceContentType("application/json").
		Get(serverInfoPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "steamapi", "GetServerInfo", "", err)
	}
	if !resp.IsSuccess() {
		return services.Wrap(services.ErrExternalTool, "steamapi", "GetServerInfo", "unexpected status "+resp.Status(), nil)
	}
	if payload.ServerTime == 0 {
		return services.Wrap(services.ErrExternalTool, "steamapi", "GetServerInfo", "response missing servertime", nil)
	}
	return nil
}

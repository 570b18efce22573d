package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AssetSource is the photo storage collaborator: one folder listing per
// category at startup, and a temporary link per presented photo.
type AssetSource interface {
	ListCategory(ctx context.Context, category Category) ([]string, error)
	TemporaryLink(ctx context.Context, person Identity) (string, error)
}

// DropboxClient talks to the Dropbox HTTP API, where the photo folders
// live. Links are fetched fresh per round since they expire.
type DropboxClient struct {
	apiURL   string
	token    string
	basePath string
	client   *http.Client
}

func newDropboxClient(token, basePath string) *DropboxClient {
	return &DropboxClient{
		apiURL:   "https://api.dropboxapi.com",
		token:    token,
		basePath: basePath,
		client:   &http.Client{Timeout: timeout},
	}
}

func (d *DropboxClient) post(ctx context.Context, endpoint string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (d *DropboxClient) ListCategory(ctx context.Context, category Category) ([]string, error) {
	var res struct {
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
	}

	payload := map[string]string{"path": d.basePath + "/" + category.Folder()}
	if err := d.post(ctx, "/2/files/list_folder", payload, &res); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Entries))
	for _, entry := range res.Entries {
		names = append(names, entry.Name)
	}

	return names, nil
}

func (d *DropboxClient) TemporaryLink(ctx context.Context, person Identity) (string, error) {
	var res struct {
		Link string `json:"link"`
	}

	path := d.basePath + "/" + person.Category.Folder() + "/" + person.Name + ".jpg"
	payload := map[string]string{"path": path}
	if err := d.post(ctx, "/2/files/get_temporary_link", payload, &res); err != nil {
		return "", fmt.Errorf("%w: %v", errAssetUnavailable, err)
	}

	return res.Link, nil
}

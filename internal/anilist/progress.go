package anilist

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProgressRecord is one series from the user's reading list: the AniList
// media id and how many chapters the user has read.
type ProgressRecord struct {
	MediaID  int
	Progress int
}

const progressQuery = `query ($name: String) {
  MediaListCollection(userName: $name, type: MANGA, status: CURRENT) {
    lists {
      name
      entries {
        mediaId
        progress
      }
    }
  }
}`

// UserProgress fetches the user's in-progress manga in one call and
// flattens the entries of every list, whatever AniList grouped them under.
func (c *Client) UserProgress(ctx context.Context, userName string) ([]ProgressRecord, error) {
	raw, err := c.Send(ctx, progressQuery, map[string]any{"name": userName})
	if err != nil {
		return nil, err
	}

	var body struct {
		Data struct {
			MediaListCollection struct {
				Lists []struct {
					Name    string `json:"name"`
					Entries []struct {
						MediaID  int `json:"mediaId"`
						Progress int `json:"progress"`
					} `json:"entries"`
				} `json:"lists"`
			} `json:"MediaListCollection"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode progress response: %w", err)
	}

	var records []ProgressRecord
	for _, list := range body.Data.MediaListCollection.Lists {
		for _, e := range list.Entries {
			records = append(records, ProgressRecord{
				MediaID:  e.MediaID,
				Progress: e.Progress,
			})
		}
	}

	return records, nil
}

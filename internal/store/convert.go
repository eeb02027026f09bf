package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/ent"
	"github.com/afrodite-backend/corectl/internal/model"
)

// marshalAttributes / marshalFilters serialize the two profile JSON blobs
// the schema documents as "serialized []model.ProfileAttributeValue" and
// "serialized model.SearchFilters" respectively (ent/schema/profile.go).
func marshalAttributes(attrs []model.ProfileAttributeValue) (string, error) {
	if attrs == nil {
		attrs = []model.ProfileAttributeValue{}
	}
	b, err := json.Marshal(attrs)
	return string(b), err
}

func unmarshalAttributes(raw string) ([]model.ProfileAttributeValue, error) {
	var attrs []model.ProfileAttributeValue
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("store: unmarshal attributes: %w", err)
	}
	return attrs, nil
}

func marshalFilters(f model.SearchFilters) (string, error) {
	b, err := json.Marshal(f)
	return string(b), err
}

func unmarshalFilters(raw string) (model.SearchFilters, error) {
	var f model.SearchFilters
	if raw == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return f, fmt.Errorf("store: unmarshal filters: %w", err)
	}
	return f, nil
}

func profileFromRow(owner model.AccountIdInternal, row *ent.Profile) model.Profile {
	attrs, _ := unmarshalAttributes(row.AttributesJSON)
	filters, _ := unmarshalFilters(row.FiltersJSON)
	version, _ := uuid.Parse(row.Version)
	return model.Profile{
		AccountID: owner,
		Name:      row.Name,
		Text:      row.Text,
		Age:       row.Age,
		Attributes: attrs,
		Filters:   filters,
		Location: model.Location{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Version: version,
	}
}

func mediaFromRow(owner model.AccountIdInternal, row *ent.MediaContent) model.MediaContent {
	contentID, _ := uuid.Parse(row.ContentID)
	return model.MediaContent{
		ContentID:                   contentID,
		Slot:                        model.ContentSlot(row.Slot),
		State:                       model.ContentState(row.State),
		Owner:                       owner,
		SecurityFlag:                row.SecurityFlag,
		FaceDetected:                row.FaceDetected,
		ContentType:                 model.ContentTypeJPEG,
		ReferencedAsProfileContent:  row.IsProfileContent,
		ReferencedAsSecurityContent: row.IsSecurityContent,
	}
}

package models

import "strings"

// FSObjType values reported by the collection for each row.
const (
	FSObjFile   = 0
	FSObjFolder = 1
)

// FolderContentTypePrefix is the content type id prefix shared by every
// folder content type.
const FolderContentTypePrefix = "0x0120"

// Item is one row of a document collection. The well-known columns are
// typed; every other column lives in Fields with whatever shape the source
// produced (scalar, lookup object, array of objects or the legacy
// "id;#label" string).
type Item struct {
	ID            int    `json:"Id" mapstructure:"Id"`
	Title         string `json:"Title,omitempty" mapstructure:"Title"`
	FileRef       string `json:"FileRef" mapstructure:"FileRef"`
	FileLeafRef   string `json:"FileLeafRef" mapstructure:"FileLeafRef"`
	ContentTypeID string `json:"ContentTypeId,omitempty" mapstructure:"ContentTypeId"`
	FSObjType     int    `json:"FSObjType" mapstructure:"FSObjType"`

	Fields map[string]any `json:"Fields,omitempty" mapstructure:"-"`

	// FieldValuesAsText is the secondary text rendition some sources expose
	// next to the raw values.
	FieldValuesAsText map[string]any `json:"FieldValuesAsText,omitempty" mapstructure:"-"`
}

// Field returns the raw value of a column. The typed columns are visible
// under their wire names so that they can be grouped on like any other.
func (it *Item) Field(name string) (any, bool) {
	if it == nil {
		return nil, false
	}
	if v, ok := it.Fields[name]; ok {
		return v, true
	}
	switch name {
	case "Id", "ID":
		return it.ID, true
	case "Title":
		if it.Title != "" {
			return it.Title, true
		}
	case "FileRef":
		return it.FileRef, true
	case "FileLeafRef":
		return it.FileLeafRef, true
	case "ContentTypeId":
		return it.ContentTypeID, true
	case "FSObjType":
		return it.FSObjType, true
	}
	return nil, false
}

// IsDocument reports whether the item is a file that can be shown as a
// leaf. Containers are recognised by either the object type or the content
// type id; both checks run on already-fetched data.
func (it *Item) IsDocument() bool {
	if it == nil || it.FileRef == "" || it.FileLeafRef == "" {
		return false
	}
	if it.FSObjType == FSObjFolder {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(it.ContentTypeID), strings.ToLower(FolderContentTypePrefix))
}

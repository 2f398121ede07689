package scrape

import (
	"errors"

	"github.com/marketdash/marketdash/internal/browser"
)

// Field returns the text of a sub-element, substituting the sentinel when the
// element is absent or empty. Any other lookup failure is returned and fails
// the row.
func Field(row browser.RowHandle, selector, sentinel string) (string, error) {
	v, err := row.Text(selector)
	if errors.Is(err, browser.ErrFieldMissing) {
		return sentinel, nil
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return sentinel, nil
	}
	return v, nil
}

// AttrField is Field for attribute lookups
func AttrField(row browser.RowHandle, selector, name, sentinel string) (string, error) {
	v, err := row.Attr(selector, name)
	if errors.Is(err, browser.ErrFieldMissing) {
		return sentinel, nil
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return sentinel, nil
	}
	return v, nil
}

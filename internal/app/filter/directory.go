package filter

import (
	"context"
)

// DirectoryFilter accepts regular files only.
type DirectoryFilter struct{}

func (f *DirectoryFilter) Name() string {
	return "directory_filter"
}

func (f *DirectoryFilter) Description() string {
	return "Skips subdirectories and other non-regular entries"
}

func (f *DirectoryFilter) ReturnCodes() []string {
	return []string{"not_regular_file"}
}

func (f *DirectoryFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *DirectoryFilter) Check(ctx context.Context, e Entry) Result {
	if !e.Mode.IsRegular() {
		return Reject("not_regular_file")
	}
	return Accept()
}

func init() {
	Register("directory_filter", func() Filter {
		return &DirectoryFilter{}
	})
}

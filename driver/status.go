package driver

// UpdateStatus is a sparse progress record. A nil field means "no
// change to that field". A tick carrying Increment without Total is an
// indeterminate step (renderers treat it as one tick out of 100,
// wrapping as needed); a tick carrying Total resets the determinate
// scale.
type UpdateStatus struct {
	Brief     *string
	Detail    *string
	Increment *uint64
	Total     *uint64
}

// Updater consumes UpdateStatus values. A nil Updater is a valid,
// behavior-neutral no-op sink. Updaters are only ever invoked from the
// goroutine driving the operation, never from background tasks.
type Updater func(UpdateStatus)

// Notify forwards status to the sink if one is attached.
func (u Updater) Notify(status UpdateStatus) {
	if u != nil {
		u(status)
	}
}

// Str and Count exist so call sites can build sparse UpdateStatus
// literals without temporaries.
func Str(value string) *string { return &value }

func Count(value uint64) *uint64 { return &value }

// Entry maps a file on disk to its archive-relative path. Archive
// paths are forward-slash separated with no leading slash.
type Entry struct {
	ArchivePath string
	FilePath    string
}

package changes

import "errors"

// ErrHistory means the change set could not be computed. It is fatal to
// a run; there is no fallback to full reprocessing.
var ErrHistory = errors.New("change detection failed")

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/errors.go
// Summary: Sentinel errors returned by the page and window managers.
// Usage: Navigation errors are logged and returned; callers may ignore them.

package texel

import "errors"

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrPageExists     = errors.New("page already exists")
	ErrNoPrevious     = errors.New("no previous page")
	ErrPageCycle      = errors.New("page parent would form a cycle")
	ErrWindowNotFound = errors.New("window not found")
)

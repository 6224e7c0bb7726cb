// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package icon resolves icon names to SVG markup and memoizes the result for
// the life of the process. A name is resolved by fetching
// <base><name>.svg through a Fetcher. Successful fetches are stored and never
// evicted; failed fetches are logged, not stored, and retried on the next
// request for the same name.
package icon

// Package tasks orchestrates library transfers between two accounts with
// real-time progress reporting.
//
// # Core Operations
//
// [TransferEngine] exposes three operations:
//
//  1. [TransferEngine.Run] : Full source → destination transfer
//     - Resolves the destination identity once up front
//     - Transfers liked songs, then each selected playlist
//     - Always finishes the event stream with the terminal DONE marker
//
//  2. [TransferEngine.TransferLikedSongs] : Liked songs only
//     - Drains the saved tracks listing through a [Pager]
//     - Chunks ids to the bulk save cap and writes batch by batch
//     - A failed batch costs only that batch's tracks
//
//  3. [TransferEngine.TransferPlaylists] : Selected playlists only
//     - Filters the source listing to the selected ids
//     - Recreates each playlist and repopulates it in batches
//     - A failed playlist never blocks the remaining ones
//
// # Progress Reporting
//
// All operations emit [ProgressUpdate] values on a caller-provided channel.
// Delivery is blocking and in order: the consumer sees every event exactly
// as produced, and a cancelled context is the only way an event is not
// delivered. Failure events carry Err = true alongside the same message
// text a plain-text consumer would print.
//
// # Pagination and Batching
//
// [Pager] drains any offset-paginated listing behind a [PageFunc],
// trusting the service's continuation flag over item counts. [Chunk]
// windows a slice into fixed-size batches for the bulk write endpoints.
package tasks

// Package notifications delivers the per-run reports. The Sender interface
// hides the transport; the shipped implementation posts HTML to a webhook
// endpoint with the subject and recipients carried as headers, and a noop
// sender takes over when no endpoint is configured. Report builders render
// the sync and cleanup summaries.
package notifications

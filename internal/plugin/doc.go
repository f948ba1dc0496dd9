// Package plugin owns the lifecycle of the single active plugin.
//
// The Manager is the only writer of the current plugin. Opening a plugin
// always closes the previous one first, so at most one plugin surface is
// attached to the host window at any instant:
//
//	mgr := plugin.NewManager(plugin.DefaultConfig(), views,
//	    plugin.WithNotifier(notifier),
//	    plugin.WithStore(docs),
//	)
//	if err := mgr.Open(ctx, desc, host); errors.Is(err, plugin.ErrUnsupportedPlatform) {
//	    // the user has already been notified
//	}
//
// Feature list changes are copy-on-write: a descriptor returned by Current
// is never modified afterwards.
//
// The Catalog discovers installed plugins under the install directory and
// keeps the list fresh by watching it.
package plugin

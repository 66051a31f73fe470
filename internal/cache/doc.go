// Package cache provides a small generic LRU cache for device objects.
//
// Entries that fall out of the cache are handed to an eviction callback, so
// a cache of GPU pipelines can destroy what it drops:
//
//	pipelines := cache.New[key, hal.RenderPipeline](64,
//		cache.WithEvict(func(_ key, p hal.RenderPipeline) {
//			device.DestroyRenderPipeline(p)
//		}))
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
// The eviction callback runs with the cache lock held and must not call back
// into the cache.
package cache

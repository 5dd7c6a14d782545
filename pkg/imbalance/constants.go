package imbalance

// DefaultK is the rank order used when no explicit k is configured: only the
// single nearest neighbor under the first distance measure is considered.
const DefaultK = 1

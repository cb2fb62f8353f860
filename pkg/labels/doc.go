// Package labels provides label-set values for metric families.
//
// A Set is a canonical, comparable encoding of label name/value pairs and can
// be used directly as the key type of a family.Family:
//
//	requests := family.NewDefault[labels.Set, metric.Counter]()
//	requests.GetOrCreate(labels.MustNew("method", "GET")).Inc()
//
// Custom label structs work as well as long as they are comparable. To be
// encodable by the registry they implement Labeler.
package labels

// Package harvest discovers raw receiver logs in the /download listing tree
// and streams them to disk in the requested format.
//
// Work is sequential: each listing fetch, name probe and download finishes
// before the next begins. Discovery order is page-link order, depth first,
// so truncating the result with a download limit is reproducible.
package harvest

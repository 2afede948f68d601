// Package cookbook holds the pure recipe logic of the server: merging
// ingredient lines of several recipes into one shopping list, counting tags,
// filtering recipe listings and the saved/verified lifecycle.
//
// Nothing here performs I/O. Callers load a user-scoped set of recipes,
// call into this package and persist whatever comes back.
package cookbook

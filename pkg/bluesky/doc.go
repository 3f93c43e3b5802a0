// Package bluesky is a minimal XRPC client for the Bluesky endpoints the
// scraper needs: createSession, resolveHandle and searchPosts.
//
// Errors are returned as *errors.Error so callers can branch on the type:
//
//	session, err := client.CreateSession(ctx, handle, appPassword)
//	if apperrors.Is(err, apperrors.ErrorTypeAuth) {
//	    // wrong handle or app password
//	}
//
// RawPost keeps the fields the extractor depends on as pointers, which
// distinguishes an absent key from an empty value after decoding.
package bluesky

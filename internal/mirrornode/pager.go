package mirrornode

import (
	"context"
)

// NoLimit lets QueryUntilEnd follow next links until the listing is exhausted.
const NoLimit = 0

// Page is a single response of a cursor paginated listing.
type Page interface {
	NextLink() string
}

type PageFunc[T Page] func(ctx context.Context) (T, error)

type NextFunc[T Page] func(ctx context.Context, link string) (T, error)

// QueryUntilEnd issues first and then follows each page's next link, one
// request at a time, until no link remains or maxRequests follow-up requests
// have been made. Pages are returned in request order.
func QueryUntilEnd[T Page](ctx context.Context, first PageFunc[T], next NextFunc[T], maxRequests int) ([]T, error) {
	pages := make([]T, 0)
	err := QueryEachPage(ctx, first, next, maxRequests, func(page T) {
		pages = append(pages, page)
	})
	if err != nil {
		return nil, err
	}

	return pages, nil
}

// QueryEachPage walks the listing like QueryUntilEnd, handing every page to
// onPage as soon as it arrives.
func QueryEachPage[T Page](ctx context.Context, first PageFunc[T], next NextFunc[T], maxRequests int, onPage func(page T)) error {
	page, err := first(ctx)
	if err != nil {
		return err
	}
	onPage(page)

	requests := 0
	for page.NextLink() != "" && (maxRequests <= NoLimit || requests < maxRequests) {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err = next(ctx, page.NextLink())
		if err != nil {
			return err
		}
		onPage(page)
		requests++
	}

	return nil
}

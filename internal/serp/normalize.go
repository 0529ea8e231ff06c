package serp

// normalize walks the provider's organic-results array in order, then
// appends news-typed items continuing the same position sequence,
// matching brightdata_client.py's _process_serp_results. Items missing a
// link are dropped silently.
func normalize(resp submitResponse) []Result {
	results := make([]Result, 0, len(resp.Organic)+len(resp.News))

	position := 0
	for _, item := range resp.Organic {
		if item.Link == "" {
			continue
		}
		position++
		results = append(results, Result{
			Position: position,
			URL:      item.Link,
			Title:    item.Title,
			Snippet:  item.Description,
			Site:     item.DisplayLink,
			Date:     item.Date,
			Type:     "organic",
		})
	}

	for _, item := range resp.News {
		if item.Link == "" {
			continue
		}
		position++
		results = append(results, Result{
			Position: position,
			URL:      item.Link,
			Title:    item.Title,
			Snippet:  item.Description,
			Site:     item.Source,
			Date:     item.Date,
			Type:     "news",
		})
	}

	return results
}

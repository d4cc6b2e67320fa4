// Package phyrestorm provides a Go client for ranked structural alignment results
// stored in SQLite or PostgreSQL.
//
// Hits of a job are ordered by primary score, highest first, with ties broken by
// ascending structure ID. Pages resume after the structure ID of the last hit seen,
// so paging stays stable without offsets.
//
//	client, _ := phyrestorm.New(ctx,
//	    phyrestorm.WithSQLite("results.db"),
//	    phyrestorm.WithPathSubstitution(`^/data/jobs/`, "/static/jobs/"),
//	)
//	defer client.Close()
//
//	page, _ := client.Results("J1").Page(ctx, nil, phyrestorm.Limit(50))
//	next, _ := client.Results("J1").Page(ctx, page.NextAfter(), phyrestorm.Limit(50))
//
// Walk visits every hit in ranking order:
//
//	err := client.Results("J1").Walk(ctx, 200, func(h phyrestorm.Hit) error {
//	    fmt.Println(h.StructureID, h.Name, h.PrimaryScore)
//	    return nil
//	})
package phyrestorm

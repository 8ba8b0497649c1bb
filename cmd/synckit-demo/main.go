// Command synckit-demo exercises two in-process replicas editing the
// same document, set, and text sequence independently, then merging
// directly (no real transport) to show convergence.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/synckit-dev/synckit/pkg/synckit"
)

func main() {
	ctx := context.Background()

	aliceID, bobID := synckit.NewReplicaID(), synckit.NewReplicaID()

	alice, err := synckit.New(synckit.Options{ReplicaID: aliceID}, nil)
	if err != nil {
		log.Fatal(err)
	}
	bob, err := synckit.New(synckit.Options{ReplicaID: bobID}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer alice.Shutdown(ctx)
	defer bob.Shutdown(ctx)

	// Concurrent field writes to the same document.
	if err := alice.SetField(ctx, "doc-1", "title", "Quarterly Report"); err != nil {
		log.Fatal(err)
	}
	if err := bob.SetField(ctx, "doc-1", "status", "draft"); err != nil {
		log.Fatal(err)
	}

	bob.MergeDocument(ctx, alice.Document("doc-1"))
	alice.MergeDocument(ctx, bob.Document("doc-1"))
	fmt.Printf("doc-1 converged: %v\n", alice.DocumentJSON("doc-1"))

	// Concurrent tag additions to a shared OR-Set.
	alice.AddToSet("tags", "finance")
	bob.AddToSet("tags", "q3")
	bob.MergeSet("tags", alice.Set("tags"))
	alice.MergeSet("tags", bob.Set("tags"))
	fmt.Printf("tags converged: %v\n", alice.SetElements("tags"))

	// Text edits to a shared sequence: bob appends after merging
	// alice's insert, then alice merges bob's copy.
	alice.InsertText("summary", 0, "Revenue grew")
	bob.MergeText("summary", alice.TextSnapshot("summary"))
	bob.InsertText("summary", len([]rune(bob.TextString("summary"))), " steadily")
	alice.MergeText("summary", bob.TextSnapshot("summary"))
	fmt.Printf("summary converged: %q\n", alice.TextString("summary"))
}

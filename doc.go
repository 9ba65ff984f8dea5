/*
Package conduit is the client-side data-access and state-synchronisation layer of
a project-management application.

Two primitives carry every read and mutation: a resilient request orchestrator
(per-attempt timeouts, retry with backoff, interceptors, project header injection,
typed errors) and a reactive in-memory store with an undo/redo log.

# Usage

	client, err := conduit.New("https://api.example.com")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := client.SelectProject(ctx, domain.Project{ID: "proj-1"}); err != nil {
		log.Fatal(err)
	}

	client.Store().Data.Subscribe(func(s domain.DataState) {
		fmt.Println(len(s.Risks), "risks")
	})

	if _, err := client.Entities().CreateItem(ctx, domain.Item{Kind: domain.KindRisk, Title: "Supplier delay"}); err != nil {
		log.Println(err) // the store has already been rolled back
	}

	client.Undo(ctx)

# Packages

  - pkg/request: the orchestrator.
  - pkg/store and pkg/undo: reactive slices and the transaction log.
  - pkg/cache with pkg/adapters/{memory,file,redis}: persisted local state.
  - pkg/session: project selection, restore and sign-out.
  - pkg/entities: optimistic CRUD over the project API.
  - pkg/adapters/http: a reference implementation of that API, for tests and demos.
*/
package conduit

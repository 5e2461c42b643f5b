package core

// CreateSettingRequest inserts the active Setting as a brand-new named
// row in Store (§6) and remembers its surrogate id for later
// SaveSettingRequest calls.
type CreateSettingRequest struct {
	Reply chan<- WriteResult
}

func (r CreateSettingRequest) handle(gs *GlobalState) {
	if gs.Store == nil {
		respond(gs, r.Reply, &storeUnavailableError{})
		return
	}
	id, err := gs.Store.Create(gs.Setting)
	if err != nil {
		respond(gs, r.Reply, err)
		return
	}
	gs.RowID = &id
	respond(gs, r.Reply, nil)
}

// SaveSettingRequest persists the active Setting (creating its row on
// first save) and, once a Solve result still matching the active
// Setting exists, mirrors it to the on-disk artifact set under
// save_root_dir (§12 item 1). The artifact write failing does not
// roll back the Store write: the row itself is the authoritative
// record, the files are a denormalized convenience.
type SaveSettingRequest struct {
	Reply chan<- WriteResult
}

func (r SaveSettingRequest) handle(gs *GlobalState) {
	if gs.Store == nil {
		respond(gs, r.Reply, &storeUnavailableError{})
		return
	}
	var err error
	if gs.RowID == nil {
		var id int64
		id, err = gs.Store.Create(gs.Setting)
		if err == nil {
			gs.RowID = &id
		}
	} else {
		err = gs.Store.Save(*gs.RowID, gs.Setting)
	}
	if err != nil {
		respond(gs, r.Reply, err)
		return
	}
	if _, freshErr := gs.freshSolve(); freshErr == nil {
		err = gs.writeArtifacts()
	}
	respond(gs, r.Reply, err)
}

// LoadSettingRequest replaces the active Setting with Store's row ID.
// Every Data slot is dropped: Data is never persisted (§1 Non-goals),
// so Reconcile must rebuild it from scratch against the freshly loaded
// Setting.
type LoadSettingRequest struct {
	ID    int64
	Reply chan<- WriteResult
}

func (r LoadSettingRequest) handle(gs *GlobalState) {
	if gs.Store == nil {
		respond(gs, r.Reply, &storeUnavailableError{})
		return
	}
	loaded, err := gs.Store.Load(r.ID)
	if err != nil {
		respond(gs, r.Reply, err)
		return
	}
	gs.Setting = loaded
	gs.Data = Data{}
	id := r.ID
	gs.RowID = &id
	respond(gs, r.Reply, nil)
}

type storeUnavailableError struct{}

func (e *storeUnavailableError) Error() string { return "no setting store configured" }

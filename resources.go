package dashactyl

// allotment is the panel's raw resource grant shape, used for both the
// base package and the optional extra grant.
type allotment struct {
	RAM     int64 `json:"ram"`
	Disk    int64 `json:"disk"`
	CPU     int64 `json:"cpu"`
	Servers int   `json:"servers"`
}

// Resources is a user's total allotment: the base package plus any extra
// grant, summed at construction time. It is a read-only snapshot, not a
// live view; refetch the user to observe remote changes.
type Resources struct {
	RAM     int64
	Disk    int64
	CPU     int64
	Servers int
}

func sumResources(pkg, extra *allotment) Resources {
	var r Resources
	if pkg != nil {
		r = Resources{RAM: pkg.RAM, Disk: pkg.Disk, CPU: pkg.CPU, Servers: pkg.Servers}
	}
	if extra != nil {
		r.RAM += extra.RAM
		r.Disk += extra.Disk
		r.CPU += extra.CPU
		r.Servers += extra.Servers
	}
	return r
}

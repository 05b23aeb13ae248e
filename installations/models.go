package installations

// Installation is one entry of the account's installation list.
type Installation struct {
	NumInst  string `json:"numinst"`
	Alias    string `json:"alias"`
	Panel    string `json:"panel"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Province string `json:"province"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Due      string `json:"due"`
	Role     string `json:"role"`
}

// Service is one contracted service of an installation.
type Service struct {
	IDService             int    `json:"idService"`
	Active                bool   `json:"active"`
	Visible               bool   `json:"visible"`
	Bde                   string `json:"bde"`
	IsPremium             bool   `json:"isPremium"`
	CodOper               string `json:"codOper"`
	Request               string `json:"request"`
	MinWrapperVersion     string `json:"minWrapperVersion"`
	UnprotectActive       bool   `json:"unprotectActive"`
	UnprotectDeviceStatus string `json:"unprotectDeviceStatus"`
	InstDate              string `json:"instDate"`
}

// AlarmPartition describes one panel partition and its reachable states.
type AlarmPartition struct {
	ID          string `json:"id"`
	EnterStates string `json:"enterStates"`
	LeaveStates string `json:"leaveStates"`
}

// Services is the full per-installation service detail. Capabilities is the
// short-lived token required on panel-scoped calls.
type Services struct {
	NumInst      string    `json:"numinst"`
	Role         string    `json:"role"`
	Alias        string    `json:"alias"`
	Status       string    `json:"status"`
	Panel        string    `json:"panel"`
	SIM          string    `json:"sim"`
	InstIbs      string    `json:"instIbs"`
	Services     []Service `json:"services"`
	ConfigRepo   struct {
		AlarmPartitions []AlarmPartition `json:"alarmPartitions"`
	} `json:"configRepoUser"`
	Capabilities string `json:"capabilities"`
	Language     string `json:"language"`
}

// Device is one installed device of an installation.
type Device struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype"`
	RemoteUse    bool   `json:"remoteUse"`
	IDService    string `json:"idService"`
	IsActive     bool   `json:"isActive"`
	SerialNumber string `json:"serialNumber"`
}

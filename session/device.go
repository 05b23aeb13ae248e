package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceIdentifiers is the stable per-user device identity sent with login
// requests. The backend ties device-authorization state to these values, so
// they are generated once and persisted.
type DeviceIdentifiers struct {
	IDDevice           string `json:"idDevice"`
	UUID               string `json:"uuid"`
	IDDeviceIndigitall string `json:"idDeviceIndigitall"`
	DeviceName         string `json:"deviceName"`
	DeviceBrand        string `json:"deviceBrand"`
	DeviceType         string `json:"deviceType"`
	DeviceVersion      string `json:"deviceVersion"`
	GeneratedAt        int64  `json:"generated_at"`
}

func (f *FileStore) devicePath(user string) string {
	return filepath.Join(f.dir, fmt.Sprintf("device_%s.json", user))
}

// LoadOrCreateDevice returns the persisted device identifiers for user,
// generating and saving a fresh set on first use.
func (f *FileStore) LoadOrCreateDevice(user string) (*DeviceIdentifiers, error) {
	path := f.devicePath(user)

	data, err := os.ReadFile(path)
	if err == nil {
		var dev DeviceIdentifiers
		if jsonErr := json.Unmarshal(data, &dev); jsonErr == nil && dev.IDDevice != "" {
			return &dev, nil
		}
		// Fall through and regenerate on a corrupt file.
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	dev := NewDeviceIdentifiers()
	out, err := json.MarshalIndent(dev, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return nil, err
	}
	return dev, nil
}

// NewDeviceIdentifiers generates a fresh, unpersisted device identity.
func NewDeviceIdentifiers() *DeviceIdentifiers {
	id := uuid.New()
	return &DeviceIdentifiers{
		IDDevice:           strings.ReplaceAll(id.String(), "-", ""),
		UUID:               strings.ToUpper(id.String()),
		IDDeviceIndigitall: uuid.New().String(),
		DeviceName:         "vigilo",
		DeviceBrand:        "vigilo",
		DeviceType:         "",
		DeviceVersion:      "10.154.0",
		GeneratedAt:        time.Now().Unix(),
	}
}

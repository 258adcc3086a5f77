package link

import (
	"fmt"

	"github.com/rs/zerolog"
	"tinygo.org/x/bluetooth"
)

// BLE exposes the Nordic UART service as a peripheral. Whatever the app
// writes to the RX characteristic is buffered for the loop.
type BLE struct {
	inbox
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
	rx      bluetooth.Characteristic
	tx      bluetooth.Characteristic
	Log     zerolog.Logger
}

// NewBLE enables the adapter, registers the UART service and prepares an
// advertisement under name. Advertising itself starts with Advertise.
func NewBLE(adapter *bluetooth.Adapter, name string, log zerolog.Logger) (*BLE, error) {
	b := &BLE{adapter: adapter, Log: log}
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble enable: %w", err)
	}

	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		b.Log.Info().Bool("connected", connected).Msg("ble connection")
		b.setConnected(connected)
	})

	err := adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.ServiceUUIDNordicUART,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &b.rx,
				UUID:   bluetooth.CharacteristicUUIDUARTRX,
				Flags:  bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					b.push(value)
				},
			},
			{
				Handle: &b.tx,
				UUID:   bluetooth.CharacteristicUUIDUARTTX,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ble uart service: %w", err)
	}

	b.adv = adapter.DefaultAdvertisement()
	err = b.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: []bluetooth.UUID{bluetooth.ServiceUUIDNordicUART},
	})
	if err != nil {
		return nil, fmt.Errorf("ble advertisement: %w", err)
	}
	return b, nil
}

func (b *BLE) Advertise() error {
	if err := b.adv.Start(); err != nil {
		return fmt.Errorf("ble advertise: %w", err)
	}
	b.Log.Debug().Msg("advertising")
	return nil
}

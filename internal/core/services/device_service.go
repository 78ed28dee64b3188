package services

import (
	"context"
	"log"
)

// DeviceCommander sends start/stop commands to a physical machine over the
// channel identified by its MQTT topic. The broker integration lives outside
// this service; callers inject an implementation at wiring time.
type DeviceCommander interface {
	SendStart(ctx context.Context, mqttTopic string, sessionID uint, durationMinutes int) error
	SendStop(ctx context.Context, mqttTopic string, sessionID uint) error
}

// LogDeviceCommander is the default commander: it only logs the command.
type LogDeviceCommander struct{}

// NewLogDeviceCommander creates a logging device commander
func NewLogDeviceCommander() *LogDeviceCommander {
	return &LogDeviceCommander{}
}

// SendStart logs a start command
func (c *LogDeviceCommander) SendStart(ctx context.Context, mqttTopic string, sessionID uint, durationMinutes int) error {
	log.Printf("device command: start session=%d topic=%s duration=%dm", sessionID, mqttTopic, durationMinutes)
	return nil
}

// SendStop logs a stop command
func (c *LogDeviceCommander) SendStop(ctx context.Context, mqttTopic string, sessionID uint) error {
	log.Printf("device command: stop session=%d topic=%s", sessionID, mqttTopic)
	return nil
}

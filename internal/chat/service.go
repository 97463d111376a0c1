// Package chat composes replies for the healthcare assistant: the prompt sent
// to a generator, and the static templates used when generation is
// unavailable.
package chat

import "strings"

// Service is the user-selected consultation area.
type Service int

const (
	ServiceUnspecified Service = iota
	ServiceHealth
	ServiceInsurance
	ServiceAppointments
	ServiceGeneral
	ServiceEmergency
	ServiceChat
)

type serviceInfo struct {
	key     string
	display string
	label   string
	context string
}

var services = map[Service]serviceInfo{
	ServiceHealth: {
		key:     "health",
		display: "Health Assessment",
		label:   "Health Status Assessment",
		context: "Service: Health Status Assessment\nFocus: Analyze symptoms, provide health guidance, assess conditions",
	},
	ServiceInsurance: {
		key:     "insurance",
		display: "Insurance",
		label:   "Insurance Information",
		context: "Service: Insurance Information\nFocus: Healthcare coverage and insurance assistance",
	},
	ServiceAppointments: {
		key:     "appointments",
		display: "Appointments",
		label:   "Doctor Appointment Assistance",
		context: "Service: Doctor Appointment Assistance\nFocus: Medical appointment scheduling and coordination",
	},
	ServiceGeneral: {
		key:     "general",
		display: "General Health",
		label:   "General Health Queries",
		context: "Service: General Health Queries\nFocus: Comprehensive health information and guidance",
	},
	ServiceEmergency: {
		key:     "emergency",
		display: "Emergency",
		label:   "Emergency Guidance",
		context: "Service: Emergency Guidance\nFocus: Urgent medical advice and emergency assistance",
	},
	ServiceChat: {
		key:     "chat",
		display: "Chat Freely",
		label:   "Chat Freely",
		context: "Service: Open Healthcare Conversation\nFocus: Natural conversation about health topics",
	},
}

const (
	defaultServiceLabel   = "General Consultation"
	defaultServiceContext = "General healthcare assistance"
)

// ParseService accepts a short key ("health") or a display name
// ("Health Assessment"), case-insensitively. Anything else is
// ServiceUnspecified.
func ParseService(s string) Service {
	s = strings.TrimSpace(s)
	if s == "" {
		return ServiceUnspecified
	}
	for svc, info := range services {
		if strings.EqualFold(s, info.key) || strings.EqualFold(s, info.display) {
			return svc
		}
	}
	return ServiceUnspecified
}

// Key is the short form used by the web client, or "" when unspecified.
func (s Service) Key() string {
	return services[s].key
}

// Label is the human-readable service name used in prompts.
func (s Service) Label() string {
	if info, ok := services[s]; ok {
		return info.label
	}
	return defaultServiceLabel
}

// Context is the service instruction block embedded in prompts.
func (s Service) Context() string {
	if info, ok := services[s]; ok {
		return info.context
	}
	return defaultServiceContext
}

func (s Service) String() string {
	if key := s.Key(); key != "" {
		return key
	}
	return "unspecified"
}

package chat

import "strings"

const (
	defaultUserName = "User"
	echoLength      = 50
)

// Placeholders substituted into fallback templates.
const (
	placeholderName  = "{name}"
	placeholderQuery = "{query}"
)

var templates = map[Service]string{
	ServiceHealth: `🩺 **Health Assessment for {name}**

I'm here to help analyze your health concerns. For "{query}":

**General Guidance:**
• Track symptoms and their progression
• Note severity and triggers
• Rest and stay hydrated
• Monitor for worsening

**Seek Medical Care If:**
🚨 High fever, difficulty breathing, chest pain, or severe symptoms

⚠️ Consult healthcare professionals for proper evaluation.`,

	ServiceInsurance: `🏥 **Insurance Help for {name}**

For your insurance question: "{query}"

**Common Services:**
• Coverage verification
• Find in-network providers
• Claims assistance
• Benefits explanation

**Next Steps:** Contact your insurance customer service for specific coverage details.`,

	ServiceAppointments: `📅 **Appointment Assistance for {name}**

For: "{query}"

**Finding Healthcare Providers:**
• Primary Care Physicians (PCP)
• Specialists
• Urgent Care Centers
• Walk-in Clinics

**Booking Appointments:**
• Call the office directly
• Use online patient portals
• Consider telemedicine options
• Ask about same-day availability

**Appointment Preparation:**
• Gather insurance information
• List current medications
• Prepare questions

*What type of appointment are you looking for?*`,

	ServiceGeneral: `🏥 **MediCare AI for {name}**

Thank you for your question about: "{query}"

**I can help with:**
• Health assessments and symptom guidance
• Insurance and appointment assistance
• General medical information
• Emergency guidance

**For specific medical advice, please consult healthcare professionals.**

*What specific health topic can I help you with?*`,

	ServiceEmergency: `🚨 **Emergency Guidance for {name}**

**Call 911 immediately for:**
• Chest pain or difficulty breathing
• Severe bleeding or trauma
• Loss of consciousness
• Stroke symptoms

**Emergency Contacts:**
• Emergency Services: 911
• Poison Control: 1-800-222-1222
• Crisis Hotline: 988

**Basic First Aid:** Apply pressure for bleeding, cool burns with water.

*Are you experiencing a medical emergency? Call 911 if yes.*`,

	ServiceChat: `💬 **MediCare AI for {name}**

You said: "{query}"

I'm happy to talk through any health topic with you, from symptoms and medications to wellness habits and finding care.

**For Best Results:**
• Be specific with your health questions
• Mention any relevant symptoms or concerns
• Ask about particular medical topics

⚠️ **Medical Disclaimer**: Educational information only. Always consult healthcare professionals for medical advice.

*How else can I assist with your healthcare needs?*`,
}

// Template renders the fallback reply for service. Unspecified services use
// the general template.
func Template(service Service, userName, query string) string {
	tmpl, ok := templates[service]
	if !ok {
		tmpl = templates[ServiceGeneral]
	}
	r := strings.NewReplacer(
		placeholderName, displayName(userName),
		placeholderQuery, echo(query),
	)
	return r.Replace(tmpl)
}

func displayName(userName string) string {
	if name := strings.TrimSpace(userName); name != "" {
		return name
	}
	return defaultUserName
}

// echo is the quoted query prefix shown in templates.
func echo(query string) string {
	return clip(strings.TrimSpace(query), echoLength) + "..."
}

// clip returns at most n runes of s.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

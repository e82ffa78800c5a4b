// Package scenario holds the role-play settings a tutor conversation can take place in.
package scenario

import (
	"math/rand/v2"
	"slices"
)

// FreeChat is the id of the open-ended scenario used when none is chosen.
const FreeChat = "free-chat"

// Scenario is one conversation setting.
type Scenario struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`

	// Prompt is the system instruction given to the tutor model.
	Prompt string `json:"-"`

	// Welcome is the tutor's opening line.
	Welcome string `json:"-"`

	// Fallbacks are canned replies used when the model cannot answer.
	Fallbacks []string `json:"-"`
}

var builtin = []Scenario{
	{
		ID:          FreeChat,
		Name:        "FREE CHAT",
		Description: "Talk about anything you like",
		Prompt:      "You are SpeakGenie, a friendly AI voice tutor for children aged 6-16. You help them practice conversations in a fun, encouraging way. Be supportive, use simple language, and add appropriate emojis. Keep responses concise and engaging. Always ask follow-up questions to keep the conversation flowing.",
		Welcome:     "Hi there! I'm SpeakGenie, your AI voice tutor! 🧞‍♂️ I'm here to help you practice speaking. What would you like to talk about today?",
		Fallbacks: []string{
			"That's interesting! Tell me more about that! 😊",
			"I'd love to hear your thoughts on that! What do you think? 🤔",
			"Great question! What would you like to talk about next? ✨",
		},
	},
	{
		ID:          "school",
		Name:        "SCHOOL",
		Description: "Classroom conversations and presentations",
		Examples:    []string{"Asking questions in class", "Giving presentations", "Talking to teachers", "Making friends"},
		Prompt:      "You are SpeakGenie helping a student practice school conversations. You might be a teacher, classmate, or school staff member. Focus on classroom discussions, presentations, asking questions, and school-related topics. Be encouraging and educational. Use simple language appropriate for ages 6-16.",
		Welcome:     "Welcome to school practice! 🎓 I'm here to help you practice classroom conversations. Are you ready for today's lesson?",
		Fallbacks: []string{
			"That's a great question for class! What subject do you enjoy most? 📚",
			"School can be exciting! What's your favorite part of the school day? 🎒",
			"Learning is fun! What new thing would you like to discover today? 🌟",
		},
	},
	{
		ID:          "store",
		Name:        "STORE",
		Description: "Shopping and customer service interactions",
		Examples:    []string{"Asking about products", "Checking prices", "Making purchases", "Getting help from staff"},
		Prompt:      "You are SpeakGenie helping a student practice shopping conversations. You are a store clerk or cashier. Help them practice asking about products, prices, making purchases, and customer service interactions. Be friendly and patient. Use simple language appropriate for ages 6-16.",
		Welcome:     "Welcome to our store! 🛍️ I'm here to help you practice shopping conversations. What are you looking for today?",
		Fallbacks: []string{
			"Welcome to our store! How can I help you find what you're looking for today? 🛍️",
			"That's a popular item! Would you like to know more about it? 💫",
			"Is there anything else I can help you with today? 😊",
		},
	},
	{
		ID:          "restaurant",
		Name:        "RESTAURANT",
		Description: "Ordering food and dining etiquette",
		Examples:    []string{"Ordering meals", "Asking about menu items", "Making special requests", "Paying the bill"},
		Prompt:      "You are SpeakGenie helping a student practice restaurant conversations. You are a waiter/waitress or restaurant staff. Help them practice ordering food, asking about menu items, making special requests, and dining etiquette. Be welcoming and helpful. Use simple language appropriate for ages 6-16.",
		Welcome:     "Welcome to our restaurant! 🍽️ I'm your server and I'm here to help you practice ordering. What looks good on our menu?",
		Fallbacks: []string{
			"Welcome! What would you like to order today? Our specials are delicious! 🍽️",
			"Great choice! Would you like anything to drink with that? 🥤",
			"How is everything tasting? Can I get you anything else? 😊",
		},
	},
	{
		ID:          "airport",
		Name:        "AIRPORT",
		Description: "Travel and navigation conversations",
		Examples:    []string{"Checking in for flights", "Going through security", "Asking for directions", "Handling luggage"},
		Prompt:      "You are SpeakGenie helping a student practice airport and travel conversations. You might be airport staff, security, or airline personnel. Help them practice checking in, asking for directions, going through security, and travel-related questions. Be professional but friendly. Use simple language appropriate for ages 6-16.",
		Welcome:     "Welcome to the airport! ✈️ I'm here to help you practice travel conversations. Where are you flying to today?",
		Fallbacks: []string{
			"Welcome to the airport! Do you need help finding your gate? ✈️",
			"Have a safe flight! Is there anything else I can help you with? 🧳",
			"The departure board is over there. What destination are you traveling to? 🌍",
		},
	},
	{
		ID:          "home",
		Name:        "HOME",
		Description: "Family conversations and daily routines",
		Examples:    []string{"Talking with family", "Discussing daily activities", "Planning weekend fun", "Sharing stories"},
		Prompt:      "You are SpeakGenie helping a student practice home and family conversations. You might be a family member or friend visiting. Focus on daily routines, household topics, family activities, and casual conversations. Be warm and familiar. Use simple language appropriate for ages 6-16.",
		Welcome:     "Welcome home! 🏠 I'm here to help you practice family conversations. How was your day today?",
		Fallbacks: []string{
			"How was your day today? Tell me about the best part! 🏠",
			"That sounds fun! What would you like to do next? 😊",
			"Family time is special! What's your favorite activity to do together? ❤️",
		},
	},
}

// All returns every scenario, free chat first.
func All() []Scenario { return slices.Clone(builtin) }

// ByID looks a scenario up. Unknown ids report false.
func ByID(id string) (Scenario, bool) {
	i := slices.IndexFunc(builtin, func(s Scenario) bool { return s.ID == id })
	if i < 0 {
		return Scenario{}, false
	}
	return builtin[i], true
}

// Get returns the scenario for id, or free chat when id is unknown.
func Get(id string) Scenario {
	if s, ok := ByID(id); ok {
		return s
	}
	return builtin[0]
}

// Fallback picks one of the scenario's canned replies at random.
func (s Scenario) Fallback() string {
	if len(s.Fallbacks) == 0 {
		return builtin[0].Fallbacks[0]
	}
	return s.Fallbacks[rand.IntN(len(s.Fallbacks))]
}

package dialogue

// Response strategies, in escalation order across a conversation.
const (
	StrategyValidation  = "Validation"
	StrategyQuestioning = "Questioning"
	StrategyCoping      = "Coping"
)

// Template states. "Normal" is the fallback bucket for states without a
// dedicated table; "High_Risk" is reserved for the safety override.
const (
	stateNormal   = "Normal"
	stateHighRisk = "High_Risk"
)

const genericAcknowledgment = "I'm here for you. How can I help?"

var templates = map[string]map[string][]string{
	"Depression": {
		StrategyValidation: {
			"It sounds like you're carrying a very heavy burden right now.",
			"It is completely understandable that you feel drained. Depression can be exhausting.",
			"I hear meaningful pain in your words. You are not alone in this.",
		},
		StrategyQuestioning: {
			"When you feel this low, what does your inner voice tend to say to you?",
			"Have you felt this way before? If so, what helped you get through it then?",
			"Is there one small thing, no matter how tiny, that you can control right now?",
		},
		StrategyCoping: {
			"Sometimes, just getting through the next hour is enough. Let's focus on that.",
			"Let's try a 'micro-step'. What is one simple act of self-care you can do in the next 5 minutes?",
			"Physical movement can sometimes shift mental states. Could you try stretching for 30 seconds?",
		},
	},
	"Anxiety": {
		StrategyValidation: {
			"It sounds like your mind is racing right now.",
			"That feeling of impending worry is so tough to sit with. I'm here with you.",
			"It makes sense that you're anxious given the uncertainty.",
		},
		StrategyQuestioning: {
			"What is the 'worst case' story your anxiety is telling you right now?",
			"If a friend felt this way, what comforting words would you offer them?",
			"Is this worry about something happening right now, or something in the future?",
		},
		StrategyCoping: {
			"Let's try the 5-4-3-2-1 technique. Can you name 5 things you can see?",
			"Take a deep breath. Inhale for 4, hold for 7, exhale for 8. Let's do it together.",
			"Try to 'ground' yourself. Feel your feet on the floor. You are safe in this moment.",
		},
	},
	"Sadness": {
		StrategyValidation: {
			"It feels really heavy right now, doesn't it?",
			"Sorrow is a valid and human emotion. You don't have to 'fix' it immediately.",
			"I'm really sorry you're going through this. It sounds painful.",
		},
		StrategyQuestioning: {
			"What do you think is at the heart of this sadness today?",
			"Does this sadness feel like it's about a specific event, or a general feeling?",
		},
		StrategyCoping: {
			"Being kind to yourself is vital now. Can you wrap yourself in a warm blanket?",
			"Sometimes a good cry is exactly what the body needs to release stress.",
		},
	},
	"Stress": {
		StrategyValidation: {
			"It sounds like you have an immense amount of pressure on you.",
			"That sounds incredibly draining. No wonder you are feeling stressed.",
		},
		StrategyQuestioning: {
			"If you could take just one task off your plate today, which one would it be?",
			"What is the most pressing thing causing this stress right now?",
		},
		StrategyCoping: {
			"Let's just pause. Take one deep breath. The world can wait for 30 seconds.",
			"Breaking things down helps. What is the very first, smallest step you can take?",
		},
	},
	stateNormal: {
		StrategyValidation: {
			"I'm glad to hear you're doing okay!",
			"It sounds like things are relatively stable for you right now.",
		},
		StrategyQuestioning: {
			"What's been the highlight of your day so far?",
			"Is there anything on your mind you'd like to explore?",
		},
		StrategyCoping: {},
	},
	stateHighRisk: {
		StrategyValidation: {
			"I am very concerned about what you're sharing.",
			"Your safety is the most important thing to me right now.",
		},
		StrategyQuestioning: {},
		StrategyCoping: {
			"Please reach out to a professional immediately. Here is a helpline: 988.",
			"Please contact emergency services or a trusted person right now.",
		},
	},
}

// Lookup resolves the template bucket for a state and strategy. It is
// total: unknown states resolve to "Normal", and an empty bucket falls
// back to the state's Validation list. The result may still be empty
// (Normal has no Coping templates); callers handle that with the
// generic acknowledgment.
func Lookup(state, strategy string) []string {
	byStrategy, ok := templates[state]
	if !ok {
		byStrategy = templates[stateNormal]
	}
	choices := byStrategy[strategy]
	if len(choices) == 0 {
		choices = byStrategy[StrategyValidation]
	}
	return choices
}

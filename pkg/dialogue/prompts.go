package dialogue

import (
	"sort"
	"strings"
)

// Prompt keys.
const (
	promptWelcome           = "welcome_menu"
	promptMenuRetry         = "menu_retry"
	promptAskMachine        = "ask_machine_number"
	promptAskRegistered     = "ask_registered_phone"
	promptRestDigits        = "ask_rest_digits"
	promptNotFound          = "identifier_not_found"
	promptConfirmCustomer   = "confirm_customer"
	promptAskLocation       = "ask_location"
	promptLocationRetry     = "location_retry"
	promptAskPincode        = "ask_pincode"
	promptConfirmPhone      = "confirm_phone"
	promptAskPhone          = "ask_phone"
	promptPhoneRetry        = "phone_retry"
	promptAskComplaint      = "ask_complaint"
	promptComplaintRetry    = "complaint_retry"
	promptAskSubComplaint   = "ask_sub_complaint"
	promptConfirmComplaint  = "confirm_complaint"
	promptAskDate           = "ask_service_date"
	promptDateRetry         = "date_retry"
	promptAskTimeFrom       = "ask_time_from"
	promptAskTimeTo         = "ask_time_to"
	promptTimeRetry         = "time_retry"
	promptClosingSuccess    = "closing_success"
	promptClosingFailure    = "closing_failure"
	promptEscalate          = "escalate"
	promptReaskIdentifier   = "reask_identifier"
	promptComplaintRestated = "complaint_restated"
)

// Languages with a prompt book.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

type promptBook struct {
	lang    string
	speech  string
	entries map[string][]string
}

var promptBooks = map[string]promptBook{
	LangEnglish: {lang: LangEnglish, speech: "en-IN", entries: englishPrompts},
	LangHindi:   {lang: LangHindi, speech: "hi-IN", entries: hindiPrompts},
}

func lookupBook(lang string) (promptBook, bool) {
	b, ok := promptBooks[strings.ToLower(strings.TrimSpace(lang))]
	return b, ok
}

// variants returns the templates for key, falling back to English.
func (b promptBook) variants(key string) []string {
	if v := b.entries[key]; len(v) > 0 {
		return v
	}
	return englishPrompts[key]
}

func render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var englishPrompts = map[string][]string{
	promptWelcome: {
		"Welcome to the machine service complaint line. To register a complaint with your machine number, press 1 or say machine. To use your registered mobile number, press 2 or say mobile. To speak to our service agent, press 0.",
		"Press 1 or say machine to use your machine number. Press 2 or say mobile to use your registered mobile number.",
	},
	promptMenuRetry: {
		"Sorry, I did not get that. For machine number press 1, for mobile number press 2, or press 0 for an agent.",
		"Please press 1 to continue with your machine number, or 2 to continue with your mobile number.",
	},
	promptAskMachine: {
		"Please say or type your machine number, one digit at a time.",
		"Please tell me the machine number printed on the chassis plate, digit by digit.",
		"Let's try once more. Type the machine number on your keypad.",
	},
	promptAskRegistered: {
		"Please say or type the ten digit mobile number registered with us.",
		"Please tell me your registered mobile number, digit by digit.",
		"Let's try once more. Type your registered mobile number on the keypad.",
	},
	promptRestDigits: {
		"I have {digits} so far. Please say the remaining digits.",
		"Got {digits}. Please continue with the rest of the number.",
	},
	promptNotFound: {
		"Sorry, I could not find that number. Please say it again, slowly, one digit at a time.",
		"That number did not match our records. Please type it on your keypad.",
		"I still could not find it. Please check the number and say it once more.",
	},
	promptReaskIdentifier: {
		"Okay. Please say the correct number again, one digit at a time.",
		"No problem. Please tell me the number again.",
	},
	promptConfirmCustomer: {
		"I found a {model} machine registered to {name} in {city}. Is that correct? Press 1 for yes or 2 for no.",
		"Is the machine registered to {name}, {city}? Please say yes or no.",
		"Please press 1 if {name} is correct, or 2 if it is not.",
	},
	promptAskLocation: {
		"Where is the machine right now? Please say the city or the nearest town.",
		"Please tell me the name of the city or town where the machine is.",
		"Which district is the machine in? Please say the city name.",
	},
	promptLocationRetry: {
		"Sorry, I could not match that place. Please say only the city name.",
		"Please say the nearest big city, for example Jaipur or Kota.",
	},
	promptAskPincode: {
		"Please say or type the six digit pincode of the machine location.",
		"Please tell me the area pincode, six digits.",
		"Type the pincode on your keypad, or press hash to skip.",
	},
	promptConfirmPhone: {
		"Should our engineer call you on the number ending in {last4}? Press 1 for yes or 2 for no.",
		"Is the number ending {last4} the right one to reach you? Say yes or no.",
		"Please press 1 to use the number ending {last4}, or 2 to give another number.",
	},
	promptAskPhone: {
		"Please say or type the ten digit mobile number our engineer should call.",
		"Please tell me a mobile number we can reach you on, digit by digit.",
		"Type the ten digit mobile number on your keypad.",
	},
	promptPhoneRetry: {
		"That does not look like a valid mobile number. Please say all ten digits again.",
		"Sorry, please type the ten digit mobile number on your keypad.",
		"Let's try once more. Please say the mobile number slowly.",
	},
	promptAskComplaint: {
		"Please tell me what problem you are facing with the machine.",
		"What is wrong with the machine? For example, engine not starting, hydraulic leak, or brake problem.",
		"Please describe the problem in a few words.",
	},
	promptComplaintRetry: {
		"Sorry, I could not understand the problem. Please describe it in a few words, like engine not starting.",
		"Please tell me which part has the problem, for example engine, brake, hydraulic, tyre or battery.",
		"Please say the problem once more.",
	},
	promptAskSubComplaint: {
		"What exactly is the {category} problem? For example {options}.",
		"Please tell me more about the {category} problem, like {options}.",
	},
	promptConfirmComplaint: {
		"You reported {summary}. Is that right? Press 1 for yes or 2 for no.",
		"I have noted {summary}. Shall I go ahead? Say yes or no.",
		"Please press 1 to confirm {summary}, or 2 to describe the problem again.",
	},
	promptComplaintRestated: {
		"Okay. Please tell me the problem again.",
		"No problem. Please describe the machine problem once more.",
	},
	promptAskDate: {
		"On which day should the engineer visit? You can say today, tomorrow, or a date.",
		"Please tell me the visit date, for example tomorrow or the 15th.",
	},
	promptDateRetry: {
		"Sorry, I did not get the date. Please say today, tomorrow, or a day of the week.",
		"Please say a date within the next month, like tomorrow or Monday.",
	},
	promptAskTimeFrom: {
		"From what time will the machine be available? For example, 10 am.",
		"Please tell me the earliest time the engineer can come, like 10 o'clock.",
	},
	promptAskTimeTo: {
		"Until what time will the machine be available?",
		"And till what time can the engineer reach? For example, 2 pm.",
	},
	promptTimeRetry: {
		"Sorry, please say a time between 8 am and 8 pm, for example 11 am.",
		"Please tell me the time in hours, like 10 o'clock or 3 pm.",
	},
	promptClosingSuccess: {
		"Thank you. Your complaint is registered. Your complaint number is {ticket}. Our engineer will contact you soon.",
	},
	promptClosingFailure: {
		"Thank you. Your complaint has been noted and our team will call you back shortly with the complaint number.",
	},
	promptEscalate: {
		"Please hold, I am connecting you to our service agent.",
	},
}

var hindiPrompts = map[string][]string{
	promptWelcome: {
		"मशीन सर्विस शिकायत लाइन में आपका स्वागत है। मशीन नंबर से शिकायत दर्ज करने के लिए 1 दबाएं या मशीन बोलें। रजिस्टर्ड मोबाइल नंबर के लिए 2 दबाएं या मोबाइल बोलें। एजेंट से बात करने के लिए 0 दबाएं।",
		"मशीन नंबर के लिए 1 दबाएं, मोबाइल नंबर के लिए 2 दबाएं।",
	},
	promptMenuRetry: {
		"माफ़ कीजिए, समझ नहीं आया। मशीन नंबर के लिए 1, मोबाइल नंबर के लिए 2, या एजेंट के लिए 0 दबाएं।",
		"कृपया मशीन नंबर के लिए 1 या मोबाइल नंबर के लिए 2 दबाएं।",
	},
	promptAskMachine: {
		"कृपया अपना मशीन नंबर एक एक अंक करके बोलें या टाइप करें।",
		"चेसिस प्लेट पर लिखा मशीन नंबर बताइए।",
		"एक बार फिर, कीपैड पर मशीन नंबर टाइप करें।",
	},
	promptAskRegistered: {
		"कृपया अपना रजिस्टर्ड दस अंकों का मोबाइल नंबर बोलें या टाइप करें।",
		"अपना रजिस्टर्ड मोबाइल नंबर एक एक अंक करके बताइए।",
		"एक बार फिर, कीपैड पर मोबाइल नंबर टाइप करें।",
	},
	promptRestDigits: {
		"अभी तक मुझे {digits} मिला है। बाकी अंक बताइए।",
		"{digits} नोट किया। आगे के अंक बोलिए।",
	},
	promptNotFound: {
		"माफ़ कीजिए, यह नंबर नहीं मिला। कृपया धीरे धीरे दोबारा बोलें।",
		"यह नंबर हमारे रिकॉर्ड में नहीं है। कृपया कीपैड पर टाइप करें।",
		"नंबर अभी भी नहीं मिला। कृपया जांच कर एक बार फिर बोलें।",
	},
	promptReaskIdentifier: {
		"ठीक है। कृपया सही नंबर दोबारा बताइए।",
		"कोई बात नहीं। नंबर फिर से बोलिए।",
	},
	promptConfirmCustomer: {
		"{city} में {name} के नाम पर {model} मशीन मिली है। क्या यह सही है? हाँ के लिए 1, नहीं के लिए 2 दबाएं।",
		"क्या मशीन {name}, {city} के नाम पर है? हाँ या नहीं बोलें।",
		"{name} सही है तो 1 दबाएं, नहीं तो 2 दबाएं।",
	},
	promptAskLocation: {
		"मशीन अभी कहाँ है? शहर या नज़दीकी कस्बे का नाम बताइए।",
		"मशीन जिस शहर में है उसका नाम बताइए।",
		"मशीन किस ज़िले में है? शहर का नाम बोलिए।",
	},
	promptLocationRetry: {
		"माफ़ कीजिए, जगह समझ नहीं आई। केवल शहर का नाम बोलें।",
		"नज़दीकी बड़े शहर का नाम बताइए, जैसे जयपुर या कोटा।",
	},
	promptAskPincode: {
		"मशीन की जगह का छह अंकों का पिनकोड बताइए।",
		"इलाके का पिनकोड बोलिए।",
		"कीपैड पर पिनकोड टाइप करें।",
	},
	promptConfirmPhone: {
		"क्या हमारे इंजीनियर आपको {last4} पर खत्म होने वाले नंबर पर कॉल करें? हाँ के लिए 1, नहीं के लिए 2 दबाएं।",
		"क्या {last4} वाला नंबर सही है? हाँ या नहीं बोलें।",
		"{last4} वाले नंबर के लिए 1, दूसरा नंबर देने के लिए 2 दबाएं।",
	},
	promptAskPhone: {
		"इंजीनियर किस दस अंकों के मोबाइल नंबर पर कॉल करे? बोलें या टाइप करें।",
		"ऐसा मोबाइल नंबर बताइए जिस पर आपसे बात हो सके।",
		"कीपैड पर दस अंकों का मोबाइल नंबर टाइप करें।",
	},
	promptPhoneRetry: {
		"यह सही मोबाइल नंबर नहीं लगता। कृपया दसों अंक दोबारा बोलें।",
		"कृपया कीपैड पर दस अंकों का मोबाइल नंबर टाइप करें।",
		"एक बार फिर, मोबाइल नंबर धीरे धीरे बोलें।",
	},
	promptAskComplaint: {
		"मशीन में क्या समस्या है, बताइए।",
		"मशीन में क्या खराबी है? जैसे इंजन स्टार्ट नहीं हो रहा, हाइड्रोलिक लीक, या ब्रेक की दिक्कत।",
		"समस्या कुछ शब्दों में बताइए।",
	},
	promptComplaintRetry: {
		"माफ़ कीजिए, समस्या समझ नहीं आई। कुछ शब्दों में बताइए, जैसे इंजन स्टार्ट नहीं हो रहा।",
		"किस हिस्से में दिक्कत है, जैसे इंजन, ब्रेक, हाइड्रोलिक, टायर या बैटरी?",
		"समस्या एक बार फिर बताइए।",
	},
	promptAskSubComplaint: {
		"{category} में ठीक क्या दिक्कत है? जैसे {options}।",
		"{category} की समस्या थोड़ा और बताइए, जैसे {options}।",
	},
	promptConfirmComplaint: {
		"आपने बताया {summary}। क्या यह सही है? हाँ के लिए 1, नहीं के लिए 2 दबाएं।",
		"मैंने {summary} नोट किया है। आगे बढ़ें? हाँ या नहीं बोलें।",
		"{summary} सही है तो 1, दोबारा बताने के लिए 2 दबाएं।",
	},
	promptComplaintRestated: {
		"ठीक है। समस्या दोबारा बताइए।",
		"कोई बात नहीं। मशीन की समस्या फिर से बताइए।",
	},
	promptAskDate: {
		"इंजीनियर किस दिन आए? आज, कल, या तारीख बताइए।",
		"विज़िट की तारीख बताइए, जैसे कल या 15 तारीख।",
	},
	promptDateRetry: {
		"माफ़ कीजिए, तारीख समझ नहीं आई। आज, कल या हफ्ते का दिन बोलिए।",
		"अगले एक महीने के अंदर की तारीख बताइए, जैसे कल या सोमवार।",
	},
	promptAskTimeFrom: {
		"मशीन किस समय से उपलब्ध होगी? जैसे सुबह 10 बजे।",
		"इंजीनियर सबसे पहले कितने बजे आ सकता है?",
	},
	promptAskTimeTo: {
		"मशीन कितने बजे तक उपलब्ध रहेगी?",
		"इंजीनियर कितने बजे तक पहुँच सकता है? जैसे दोपहर 2 बजे।",
	},
	promptTimeRetry: {
		"माफ़ कीजिए, सुबह 8 से रात 8 बजे के बीच का समय बताइए, जैसे 11 बजे।",
		"समय घंटों में बताइए, जैसे 10 बजे या दोपहर 3 बजे।",
	},
	promptClosingSuccess: {
		"धन्यवाद। आपकी शिकायत दर्ज हो गई है। आपका शिकायत नंबर {ticket} है। हमारे इंजीनियर जल्द संपर्क करेंगे।",
	},
	promptClosingFailure: {
		"धन्यवाद। आपकी शिकायत नोट कर ली गई है, हमारी टीम जल्द शिकायत नंबर के साथ आपको कॉल करेगी।",
	},
	promptEscalate: {
		"कृपया लाइन पर बने रहें, आपको हमारे सर्विस एजेंट से जोड़ा जा रहा है।",
	},
}

package i18n

var english = map[string]string{
	"error.generic":      "Something went wrong on our side. Please try again.",
	"unsupported":        "Sorry, I can only read text, buttons and photos.",
	"list.button":        "Choose",
	"list.end":           "No more items.",
	"page.next":          "Next page",
	"page.prev":          "Previous page",
	"button.skip":        "Skip",
	"button.done":        "Done",
	"button.menu":        "Menu",
	"invalid.number":     "Please send a number greater than zero, for example 25 or 12.5.",
	"invalid.quantity":   "Please send a number. Send 0 to remove the item.",
	"invalid.date":       "Please send a date as YYYY-MM-DD, or type skip.",
	"invalid.date_req":   "Please send a date as YYYY-MM-DD.",
	"invalid.text":       "Please send a short text answer.",
	"invalid.choice":     "Please pick one of the options.",
	"stale.button":       "That option is no longer available.",
	"image.unexpected":   "Thanks! I only use photos while you upload product pictures or an ID document. Type menu to see what you can do.",
	"image.unsupported":  "Please send a photo (JPEG or PNG).",
	"cancelled":          "Cancelled.",
	"undo.done":          "Went back one step.",
	"undo.none":          "Nothing to undo.",
	"stop.done":          "You will no longer receive notifications from us. Send START to turn them back on.",
	"start.done":         "Notifications are back on.",
	"auth.required":      "Please sign up or log in first.",
	"role.seller":        "This option is only available to sellers.",
	"role.buyer":         "This option is only available to buyers.",
	"already.registered": "You are already signed in as %s.",
	"help": "Here is how it works:\n" +
		"• menu: see what you can do\n" +
		"• signup / login: connect your account\n" +
		"• upload: list a product\n" +
		"• undo or back: go back one step\n" +
		"• cancel: stop what you are doing\n" +
		"• lock / unlock: protect your account\n" +
		"• language: switch language\n" +
		"You can also just describe what you want, like \"selling 200 kg tomatoes at 1.20\".",

	"menu.guest":        "Welcome to FarmGate! Sign up or log in to buy and sell produce.",
	"menu.user":         "Hi %s, what would you like to do?",
	"menu.hint":         "Type menu at any time to see your options.",
	"menu.signup":       "Sign up",
	"menu.login":        "Log in",
	"menu.faq":          "Help & FAQ",
	"menu.lang":         "Language",
	"menu.product":      "List a product",
	"menu.products":     "My products",
	"menu.requests":     "Buyer requests",
	"menu.orders":       "My orders",
	"menu.transactions": "Transactions",
	"menu.id":           "Verify my ID",
	"menu.harvest":      "Request a harvest",
	"menu.market":       "Browse market",
	"menu.cart":         "My cart",

	"signup.name":          "What is your full name?",
	"signup.email":         "What is your email address?",
	"signup.email_invalid": "That email does not look right. Please try again.",
	"signup.exists":        "An account with that email already exists. Type login to sign in.",
	"signup.country":       "Which country are you in? Pick one or type the 2-letter code.",
	"signup.type":          "Are you selling or buying?",
	"signup.welcome":       "Welcome, %s! Your account is ready.",
	"acct.seller":          "I sell",
	"acct.buyer":           "I buy",

	"otp.code":      "Your verification code is %s. It expires in 10 minutes.",
	"otp.sent":      "We sent a verification code to %s. Please type it here.",
	"otp.prompt":    "Please type the verification code we sent you.",
	"otp.format":    "Codes are 4 to 8 digits. Please try again.",
	"otp.invalid":   "That code is not correct. Please try again.",
	"otp.exhausted": "Too many wrong codes. Please wait a few minutes and start again.",
	"otp.cooldown":  "Too many codes requested. Please wait 15 minutes and try again.",

	"login.email":   "Please type the email address of your account.",
	"login.unknown": "We could not find an account with that email. Type signup to create one.",
	"login.done":    "Welcome back, %s!",

	"verify.required": "For your security, please confirm this number first.",
	"verify.done":     "Thanks, this number is now verified.",

	"lock.notice":       "Your account is locked. Type unlock to verify it's you.",
	"lock.done":         "Your account is now locked. Type unlock when you want to continue.",
	"unlock.not_locked": "Your account is not locked.",
	"unlock.done":       "Your account is unlocked.",
	"logout.done":       "You are logged out. This number is no longer linked to your account.",

	"product.name":        "What product are you listing? For example: Roma tomatoes.",
	"product.category":    "Pick a category.",
	"product.description": "Add a short description, or type skip.",
	"product.price":       "What is the price per unit?",
	"product.quantity":    "How much do you have available?",
	"product.unit":        "Pick the unit, or type it.",
	"product.photos":      "Send up to %d photos. Type done when you are finished, or skip.",
	"product.photo_saved": "Photo %d saved. Send another one or type done.",
	"product.photos_full": "That is the maximum number of photos. Type done to publish.",
	"product.created":     "Your product %s is listed: %s %s at %s each.",
	"product.detail":      "%s\nCategory: %s\nPrice: %s\nAvailable: %s %s",
	"products.title":      "Your products (page %d)",
	"products.empty":      "You have no products listed yet.",

	"cat.vegetables": "Vegetables",
	"cat.fruits":     "Fruits",
	"cat.grains":     "Grains",
	"cat.livestock":  "Livestock",
	"cat.dairy":      "Dairy",
	"cat.other":      "Other",

	"unit.kg":    "Kilograms (kg)",
	"unit.ton":   "Tons",
	"unit.lb":    "Pounds (lb)",
	"unit.crate": "Crates",
	"unit.bunch": "Bunches",
	"unit.dozen": "Dozens",
	"unit.unit":  "Units",

	"harvest.crop":     "Which crop do you need?",
	"harvest.window":   "When do you need it? Send a date as YYYY-MM-DD, or skip.",
	"harvest.quantity": "How much do you need?",
	"harvest.unit":     "Pick the unit.",
	"harvest.notes":    "Any notes for sellers? Or type skip.",
	"harvest.created":  "Your request %s for %s %s of %s is posted. Sellers will send you quotes.",

	"requests.title":       "Open buyer requests (page %d)",
	"requests.empty":       "There are no open buyer requests right now.",
	"request.detail":       "Request %s\nCrop: %s\nQuantity: %s %s\nNeeded by: %s\nNotes: %s",
	"request.quote":        "Send a quote",
	"request.ack":          "I'm interested",
	"request.acknowledged": "Done. The buyer will see that you are interested.",
	"request.not_found":    "That request is no longer open.",

	"quote.price":        "What price per unit do you offer?",
	"quote.currency":     "Pick the currency, or type its 3-letter code.",
	"quote.quantity":     "How much can you supply?",
	"quote.delivery":     "Delivery date as YYYY-MM-DD, or skip.",
	"quote.notes":        "Any notes for the buyer? Or type skip.",
	"quote.created":      "Quote sent: %s units at %s %s.",
	"quote.pick_request": "Which request is this quote for? Pick one below.",

	"orders.title":         "Your orders (page %d)",
	"orders.empty":         "You have no open orders.",
	"order.detail":         "Order %s\n%s: %s %s\nBuyer: %s\nTotal: %s %s\nStatus: %s",
	"order.accept":         "Accept",
	"order.reject":         "Reject",
	"order.update":         "Update status",
	"order.not_found":      "We could not find that order.",
	"order.eta":            "When will the order be ready? Send a date as YYYY-MM-DD.",
	"order.shipping":       "Shipping method or carrier? Or type skip.",
	"order.reject_reason":  "Why are you rejecting this order?",
	"order.status":         "Pick the new status.",
	"order.tracking":       "Tracking number? Or type skip.",
	"order.accepted":       "Order %s accepted.",
	"order.rejected":       "Order %s rejected.",
	"order.updated":        "Order %s is now %s.",
	"order.not_actionable": "Order %s is %s and cannot be changed that way.",

	"status.pending":   "pending",
	"status.accepted":  "accepted",
	"status.rejected":  "rejected",
	"status.shipped":   "shipped",
	"status.delivered": "delivered",
	"status.cancelled": "cancelled",

	"txn.lookup":    "Send a transaction reference, or pick one below.",
	"txn.title":     "Recent transactions (page %d)",
	"txn.empty":     "No transactions yet.",
	"txn.not_found": "No transaction with that reference. Try again or type menu.",
	"txn.detail":    "Transaction %s\nAmount: %s %s\nStatus: %s\nDate: %s",

	"market.title":  "Marketplace (page %d)",
	"market.empty":  "No products are available right now.",
	"market.detail": "%s\nPrice: %s per %s\nAvailable: %s %s",
	"cart.add":      "Add to cart",
	"cart.view":     "View cart",
	"cart.quantity": "How many %s of %s do you want? Send 0 to remove it.",
	"cart.updated":  "Cart updated.",
	"cart.removed":  "Removed from your cart.",
	"cart.empty":    "Your cart is empty.",
	"cart.summary":  "Your cart:\n%s\nTotal: %s",
	"cart.stock":    "Sorry, there is not enough stock for that quantity.",

	"id.prompt": "Send a photo of your ID document.",
	"id.saved":  "Thanks! Your document was received and will be reviewed.",

	"faq.title":           "What would you like to know?",
	"faq.fees.title":      "Fees",
	"faq.fees.answer":     "Listing products is free. A small commission is charged only when an order is completed.",
	"faq.payments.title":  "Payments",
	"faq.payments.answer": "Buyers pay through the platform. Sellers are paid after the buyer confirms delivery.",
	"faq.shipping.title":  "Shipping",
	"faq.shipping.answer": "Sellers choose how to ship when they accept an order and share tracking when available.",
	"faq.account.title":   "My account",
	"faq.account.answer":  "Type lock to lock your account from this phone and unlock to open it again with a code.",

	"lang.title": "Choose your language.",
	"lang.set":   "Language updated.",

	"shortcut.prefilled": "Got it! I filled in what you told me.",

	"notify.new_order":    "New order %s: %s, %s from %s. Total %s.",
	"notify.order_status": "Order %s is now %s.",
}

package i18n

var spanish = map[string]string{
	"error.generic":      "Algo salió mal de nuestro lado. Por favor, inténtalo de nuevo.",
	"unsupported":        "Lo siento, solo puedo leer texto, botones y fotos.",
	"list.button":        "Elegir",
	"list.end":           "No hay más elementos.",
	"page.next":          "Página siguiente",
	"page.prev":          "Página anterior",
	"button.skip":        "Omitir",
	"button.done":        "Listo",
	"button.menu":        "Menú",
	"invalid.number":     "Envía un número mayor que cero, por ejemplo 25 o 12.5.",
	"invalid.quantity":   "Envía un número. Envía 0 para quitar el artículo.",
	"invalid.date":       "Envía una fecha como AAAA-MM-DD, o escribe skip.",
	"invalid.date_req":   "Envía una fecha como AAAA-MM-DD.",
	"invalid.text":       "Envía una respuesta corta.",
	"invalid.choice":     "Elige una de las opciones.",
	"stale.button":       "Esa opción ya no está disponible.",
	"image.unexpected":   "¡Gracias! Solo uso fotos al subir imágenes de productos o un documento de identidad. Escribe menu para ver las opciones.",
	"image.unsupported":  "Envía una foto (JPEG o PNG).",
	"cancelled":          "Cancelado.",
	"undo.done":          "Volviste un paso atrás.",
	"undo.none":          "No hay nada que deshacer.",
	"stop.done":          "Ya no recibirás notificaciones. Envía START para activarlas de nuevo.",
	"start.done":         "Las notificaciones están activadas.",
	"auth.required":      "Primero regístrate o inicia sesión.",
	"role.seller":        "Esta opción es solo para vendedores.",
	"role.buyer":         "Esta opción es solo para compradores.",
	"already.registered": "Ya iniciaste sesión como %s.",

	"menu.guest":        "¡Bienvenido a FarmGate! Regístrate o inicia sesión para comprar y vender productos.",
	"menu.user":         "Hola %s, ¿qué quieres hacer?",
	"menu.hint":         "Escribe menu en cualquier momento para ver tus opciones.",
	"menu.signup":       "Registrarme",
	"menu.login":        "Iniciar sesión",
	"menu.faq":          "Ayuda",
	"menu.lang":         "Idioma",
	"menu.product":      "Publicar producto",
	"menu.products":     "Mis productos",
	"menu.requests":     "Solicitudes",
	"menu.orders":       "Mis pedidos",
	"menu.transactions": "Transacciones",
	"menu.id":           "Verificar identidad",
	"menu.harvest":      "Pedir cosecha",
	"menu.market":       "Ver mercado",
	"menu.cart":         "Mi carrito",

	"signup.name":          "¿Cuál es tu nombre completo?",
	"signup.email":         "¿Cuál es tu correo electrónico?",
	"signup.email_invalid": "Ese correo no parece válido. Inténtalo de nuevo.",
	"signup.exists":        "Ya existe una cuenta con ese correo. Escribe login para entrar.",
	"signup.country":       "¿En qué país estás? Elige uno o escribe el código de 2 letras.",
	"signup.type":          "¿Vendes o compras?",
	"signup.welcome":       "¡Bienvenido, %s! Tu cuenta está lista.",
	"acct.seller":          "Vendo",
	"acct.buyer":           "Compro",

	"otp.code":      "Tu código de verificación es %s. Vence en 10 minutos.",
	"otp.sent":      "Enviamos un código de verificación a %s. Escríbelo aquí.",
	"otp.prompt":    "Escribe el código de verificación que te enviamos.",
	"otp.format":    "Los códigos tienen de 4 a 8 dígitos. Inténtalo de nuevo.",
	"otp.invalid":   "Ese código no es correcto. Inténtalo de nuevo.",
	"otp.exhausted": "Demasiados códigos incorrectos. Espera unos minutos y vuelve a empezar.",
	"otp.cooldown":  "Pediste demasiados códigos. Espera 15 minutos e inténtalo de nuevo.",

	"login.email":   "Escribe el correo de tu cuenta.",
	"login.unknown": "No encontramos una cuenta con ese correo. Escribe signup para crear una.",
	"login.done":    "¡Bienvenido de nuevo, %s!",

	"verify.required": "Por tu seguridad, primero confirma este número.",
	"verify.done":     "Gracias, este número ya está verificado.",

	"lock.notice":       "Tu cuenta está bloqueada. Escribe unlock para verificar que eres tú.",
	"lock.done":         "Tu cuenta está bloqueada. Escribe unlock cuando quieras continuar.",
	"unlock.not_locked": "Tu cuenta no está bloqueada.",
	"unlock.done":       "Tu cuenta está desbloqueada.",
	"logout.done":       "Cerraste sesión. Este número ya no está vinculado a tu cuenta.",

	"product.name":        "¿Qué producto quieres publicar? Por ejemplo: tomate saladette.",
	"product.category":    "Elige una categoría.",
	"product.description": "Agrega una descripción corta, o escribe skip.",
	"product.price":       "¿Cuál es el precio por unidad?",
	"product.quantity":    "¿Cuánto tienes disponible?",
	"product.unit":        "Elige la unidad, o escríbela.",
	"product.photos":      "Envía hasta %d fotos. Escribe done al terminar, o skip.",
	"product.photo_saved": "Foto %d guardada. Envía otra o escribe done.",
	"product.photos_full": "Ese es el máximo de fotos. Escribe done para publicar.",
	"product.created":     "Tu producto %s está publicado: %s %s a %s cada uno.",
	"product.detail":      "%s\nCategoría: %s\nPrecio: %s\nDisponible: %s %s",
	"products.title":      "Tus productos (página %d)",
	"products.empty":      "Todavía no tienes productos publicados.",

	"cat.vegetables": "Verduras",
	"cat.fruits":     "Frutas",
	"cat.grains":     "Granos",
	"cat.livestock":  "Ganado",
	"cat.dairy":      "Lácteos",
	"cat.other":      "Otro",

	"unit.kg":    "Kilogramos (kg)",
	"unit.ton":   "Toneladas",
	"unit.lb":    "Libras (lb)",
	"unit.crate": "Cajas",
	"unit.bunch": "Manojos",
	"unit.dozen": "Docenas",
	"unit.unit":  "Piezas",

	"harvest.crop":     "¿Qué cultivo necesitas?",
	"harvest.window":   "¿Para cuándo lo necesitas? Envía una fecha como AAAA-MM-DD, o skip.",
	"harvest.quantity": "¿Cuánto necesitas?",
	"harvest.unit":     "Elige la unidad.",
	"harvest.notes":    "¿Alguna nota para los vendedores? O escribe skip.",
	"harvest.created":  "Tu solicitud %s de %s %s de %s está publicada. Los vendedores te enviarán cotizaciones.",

	"requests.title":       "Solicitudes abiertas (página %d)",
	"requests.empty":       "No hay solicitudes abiertas en este momento.",
	"request.quote":        "Enviar cotización",
	"request.ack":          "Me interesa",
	"request.acknowledged": "Listo. El comprador verá que te interesa.",
	"request.not_found":    "Esa solicitud ya no está abierta.",

	"quote.price":        "¿Qué precio por unidad ofreces?",
	"quote.currency":     "Elige la moneda, o escribe su código de 3 letras.",
	"quote.quantity":     "¿Cuánto puedes surtir?",
	"quote.delivery":     "Fecha de entrega como AAAA-MM-DD, o skip.",
	"quote.notes":        "¿Alguna nota para el comprador? O escribe skip.",
	"quote.created":      "Cotización enviada: %s unidades a %s %s.",
	"quote.pick_request": "¿Para qué solicitud es la cotización? Elige una.",

	"orders.title":         "Tus pedidos (página %d)",
	"orders.empty":         "No tienes pedidos abiertos.",
	"order.accept":         "Aceptar",
	"order.reject":         "Rechazar",
	"order.update":         "Cambiar estado",
	"order.not_found":      "No encontramos ese pedido.",
	"order.eta":            "¿Cuándo estará listo el pedido? Envía una fecha como AAAA-MM-DD.",
	"order.shipping":       "¿Método de envío o transportista? O escribe skip.",
	"order.reject_reason":  "¿Por qué rechazas este pedido?",
	"order.status":         "Elige el nuevo estado.",
	"order.tracking":       "¿Número de rastreo? O escribe skip.",
	"order.accepted":       "Pedido %s aceptado.",
	"order.rejected":       "Pedido %s rechazado.",
	"order.updated":        "El pedido %s ahora está %s.",
	"order.not_actionable": "El pedido %s está %s y no se puede cambiar así.",

	"status.pending":   "pendiente",
	"status.accepted":  "aceptado",
	"status.rejected":  "rechazado",
	"status.shipped":   "enviado",
	"status.delivered": "entregado",
	"status.cancelled": "cancelado",

	"txn.lookup":    "Envía la referencia de una transacción, o elige una.",
	"txn.title":     "Transacciones recientes (página %d)",
	"txn.empty":     "Todavía no hay transacciones.",
	"txn.not_found": "No hay ninguna transacción con esa referencia. Inténtalo de nuevo o escribe menu.",

	"market.title":  "Mercado (página %d)",
	"market.empty":  "No hay productos disponibles en este momento.",
	"cart.add":      "Agregar al carrito",
	"cart.view":     "Ver carrito",
	"cart.quantity": "¿Cuántos %s de %s quieres? Envía 0 para quitarlo.",
	"cart.updated":  "Carrito actualizado.",
	"cart.removed":  "Se quitó de tu carrito.",
	"cart.empty":    "Tu carrito está vacío.",
	"cart.summary":  "Tu carrito:\n%s\nTotal: %s",
	"cart.stock":    "Lo siento, no hay suficiente existencia para esa cantidad.",

	"id.prompt": "Envía una foto de tu documento de identidad.",
	"id.saved":  "¡Gracias! Recibimos tu documento y lo revisaremos.",

	"faq.title":           "¿Qué te gustaría saber?",
	"faq.fees.title":      "Comisiones",
	"faq.fees.answer":     "Publicar productos es gratis. Solo se cobra una pequeña comisión cuando se completa un pedido.",
	"faq.payments.title":  "Pagos",
	"faq.payments.answer": "Los compradores pagan en la plataforma. Los vendedores reciben el pago cuando el comprador confirma la entrega.",
	"faq.shipping.title":  "Envíos",
	"faq.shipping.answer": "Los vendedores eligen cómo enviar al aceptar un pedido y comparten el rastreo cuando lo tienen.",
	"faq.account.title":   "Mi cuenta",
	"faq.account.answer":  "Escribe lock para bloquear tu cuenta desde este teléfono y unlock para abrirla de nuevo con un código.",

	"lang.title": "Elige tu idioma.",
	"lang.set":   "Idioma actualizado.",

	"shortcut.prefilled": "¡Entendido! Completé lo que me dijiste.",

	"notify.new_order":    "Nuevo pedido %s: %s, %s de %s. Total %s.",
	"notify.order_status": "El pedido %s ahora está %s.",
}

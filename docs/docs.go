// Package docs contiene la definición OpenAPI servida en /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/audit": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Bitácora de acciones de admin",
                "responses": {}
            }
        },
        "/admin/businesses/{businessID}/verify": {
            "patch": {
                "tags": [
                    "admin"
                ],
                "summary": "Verificar negocio (admin)",
                "responses": {}
            }
        },
        "/admin/campaigns": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Campañas por estado (admin)",
                "responses": {}
            }
        },
        "/admin/campaigns/{campaignID}/publish": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Publicar campaña (admin)",
                "responses": {}
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Panel de admin",
                "responses": {}
            }
        },
        "/admin/reports": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Cola de moderación (admin)",
                "responses": {}
            }
        },
        "/admin/reports/{reportID}/dismiss": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Descartar reporte (admin)",
                "responses": {}
            }
        },
        "/admin/reports/{reportID}/resolve": {
            "post": {
                "description": "remove_content=true borra el contenido reportado (o suspende al usuario).",
                "tags": [
                    "admin"
                ],
                "summary": "Resolver reporte (admin)",
                "responses": {}
            }
        },
        "/admin/tickets": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Tickets por estado (admin)",
                "responses": {}
            }
        },
        "/admin/tickets/{ticketID}": {
            "patch": {
                "tags": [
                    "admin"
                ],
                "summary": "Cambiar estado / prioridad (admin)",
                "responses": {}
            }
        },
        "/businesses": {
            "post": {
                "tags": [
                    "businesses"
                ],
                "summary": "Registrar negocio",
                "responses": {}
            },
            "get": {
                "tags": [
                    "businesses"
                ],
                "summary": "Directorio de negocios",
                "responses": {}
            }
        },
        "/businesses/{businessID}": {
            "get": {
                "tags": [
                    "businesses"
                ],
                "summary": "Detalle de negocio",
                "responses": {}
            },
            "put": {
                "description": "Dueño o admin. Reemplaza todos los campos editables.",
                "tags": [
                    "businesses"
                ],
                "summary": "Editar negocio",
                "responses": {}
            },
            "delete": {
                "tags": [
                    "businesses"
                ],
                "summary": "Eliminar negocio",
                "responses": {}
            }
        },
        "/businesses/{businessID}/ratings": {
            "post": {
                "description": "Una calificación por usuario; volver a calificar la reemplaza. El dueño no puede calificarse.",
                "tags": [
                    "businesses"
                ],
                "summary": "Calificar negocio",
                "responses": {}
            },
            "get": {
                "tags": [
                    "businesses"
                ],
                "summary": "Calificaciones de un negocio",
                "responses": {}
            }
        },
        "/campaigns": {
            "post": {
                "description": "Queda en draft hasta que un admin la publique.",
                "tags": [
                    "campaigns"
                ],
                "summary": "Proponer campaña",
                "responses": {}
            },
            "get": {
                "description": "Publicadas y vigentes, ordenadas por fecha de inicio.",
                "tags": [
                    "campaigns"
                ],
                "summary": "Próximas campañas",
                "responses": {}
            }
        },
        "/campaigns/{campaignID}": {
            "get": {
                "tags": [
                    "campaigns"
                ],
                "summary": "Detalle de campaña",
                "responses": {}
            },
            "put": {
                "tags": [
                    "campaigns"
                ],
                "summary": "Editar campaña",
                "responses": {}
            }
        },
        "/campaigns/{campaignID}/cancel": {
            "post": {
                "tags": [
                    "campaigns"
                ],
                "summary": "Cancelar campaña",
                "responses": {}
            }
        },
        "/comments/{commentID}": {
            "delete": {
                "description": "El autor, el reportante de la mascota o un admin.",
                "tags": [
                    "comments"
                ],
                "summary": "Eliminar comentario",
                "responses": {}
            }
        },
        "/gamification/leaderboard": {
            "get": {
                "tags": [
                    "gamification"
                ],
                "summary": "Ranking de la comunidad",
                "responses": {}
            }
        },
        "/geo/reverse": {
            "get": {
                "tags": [
                    "geo"
                ],
                "summary": "Dirección de un punto",
                "responses": {}
            }
        },
        "/geo/search": {
            "get": {
                "tags": [
                    "geo"
                ],
                "summary": "Buscar dirección",
                "responses": {}
            }
        },
        "/matching/pets/{petID}": {
            "get": {
                "description": "Reportes abiertos del estado complementario (perdido ↔ encontrado/avistado), misma especie, ordenados por similitud.",
                "tags": [
                    "matching"
                ],
                "summary": "Posibles coincidencias",
                "responses": {}
            }
        },
        "/matching/search": {
            "get": {
                "description": "Búsqueda semántica en texto libre sobre reportes abiertos.",
                "tags": [
                    "matching"
                ],
                "summary": "Búsqueda con IA",
                "responses": {}
            }
        },
        "/me/businesses": {
            "get": {
                "tags": [
                    "businesses"
                ],
                "summary": "Mis negocios",
                "responses": {}
            }
        },
        "/me/campaigns": {
            "get": {
                "tags": [
                    "campaigns"
                ],
                "summary": "Mis campañas",
                "responses": {}
            }
        },
        "/me/pets": {
            "get": {
                "tags": [
                    "pets"
                ],
                "summary": "Mis reportes",
                "responses": {}
            }
        },
        "/me/points": {
            "get": {
                "description": "Total de puntos, nivel actual y últimos movimientos del usuario autenticado.",
                "tags": [
                    "gamification"
                ],
                "summary": "Mis puntos",
                "responses": {}
            }
        },
        "/me/profile": {
            "get": {
                "description": "Devuelve el perfil del usuario autenticado; lo crea en el primer acceso.",
                "tags": [
                    "profiles"
                ],
                "summary": "Mi perfil",
                "responses": {}
            },
            "patch": {
                "description": "PATCH parcial. Valida celular (9 dígitos, empieza con 9) y DNI (8 dígitos).",
                "tags": [
                    "profiles"
                ],
                "summary": "Actualizar mi perfil",
                "responses": {}
            }
        },
        "/p/{slug}": {
            "get": {
                "tags": [
                    "pets"
                ],
                "summary": "Reporte por link corto",
                "responses": {}
            }
        },
        "/pets": {
            "post": {
                "description": "Crea un reporte de mascota perdida, encontrada, avistada o en adopción.",
                "tags": [
                    "pets"
                ],
                "summary": "Reportar mascota",
                "responses": {}
            },
            "get": {
                "description": "Filtros: status (coma), species, district, q, near=lat,lng, radius_km. Más recientes primero.",
                "tags": [
                    "pets"
                ],
                "summary": "Listar reportes",
                "responses": {}
            }
        },
        "/pets/{petID}": {
            "get": {
                "tags": [
                    "pets"
                ],
                "summary": "Detalle de reporte",
                "responses": {}
            },
            "patch": {
                "description": "Solo el reportante o un admin. Un reporte cerrado solo lo edita un admin.",
                "tags": [
                    "pets"
                ],
                "summary": "Editar reporte",
                "responses": {}
            },
            "delete": {
                "tags": [
                    "pets"
                ],
                "summary": "Eliminar reporte",
                "responses": {}
            }
        },
        "/pets/{petID}/close": {
            "post": {
                "description": "outcome=reunited (perdido/encontrado/avistado) o adopted (adopción). Si no se envía se infiere.",
                "tags": [
                    "pets"
                ],
                "summary": "Cerrar reporte",
                "responses": {}
            }
        },
        "/pets/{petID}/comments": {
            "post": {
                "description": "is_sighting=true con lat/lng registra un avistamiento.",
                "tags": [
                    "comments"
                ],
                "summary": "Comentar un reporte",
                "responses": {}
            },
            "get": {
                "tags": [
                    "comments"
                ],
                "summary": "Hilo de comentarios",
                "responses": {}
            }
        },
        "/pets/{petID}/share": {
            "get": {
                "description": "Slug corto, URL pública y URL del QR para el afiche.",
                "tags": [
                    "pets"
                ],
                "summary": "Link para compartir",
                "responses": {}
            }
        },
        "/reports": {
            "post": {
                "tags": [
                    "moderation"
                ],
                "summary": "Reportar contenido",
                "responses": {}
            }
        },
        "/support/tickets": {
            "post": {
                "tags": [
                    "support"
                ],
                "summary": "Abrir ticket de soporte",
                "responses": {}
            },
            "get": {
                "tags": [
                    "support"
                ],
                "summary": "Mis tickets",
                "responses": {}
            }
        },
        "/support/tickets/{ticketID}": {
            "get": {
                "tags": [
                    "support"
                ],
                "summary": "Detalle de ticket con mensajes",
                "responses": {}
            }
        },
        "/support/tickets/{ticketID}/messages": {
            "post": {
                "description": "Responder un ticket resuelto lo reabre; uno cerrado no acepta mensajes.",
                "tags": [
                    "support"
                ],
                "summary": "Responder ticket",
                "responses": {}
            }
        },
        "/uploads/presign": {
            "post": {
                "description": "content_type: image/jpeg, image/png o image/webp. kind: pets|avatars|businesses|campaigns.",
                "tags": [
                    "uploads"
                ],
                "summary": "URL prefirmada para subir una foto",
                "responses": {}
            }
        },
        "/users/{userID}": {
            "get": {
                "tags": [
                    "profiles"
                ],
                "summary": "Perfil público de un usuario",
                "responses": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Reunite API",
	Description:      "Reportes de mascotas perdidas y encontradas, coincidencias y comunidad.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

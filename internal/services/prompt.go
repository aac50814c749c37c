package services

import "fmt"

// Prompts are written in Spanish: the product teaches languages to
// Spanish-speaking students and every model is instructed to answer in
// Spanish while using the target language in examples.

func buildLessonPrompt(tema, nivelIdioma, idiomaObjetivo string) string {
	return fmt.Sprintf(
		"Eres un profesor experto de idiomas. Crea una lección completa de %s "+
			"para un estudiante de nivel '%s' sobre el tema '%s'.\n\n"+
			"La lección DEBE incluir:\n"+
			"1. Introducción y objetivos\n"+
			"2. Vocabulario clave (mínimo 10 palabras con traducción)\n"+
			"3. Explicación gramatical con ejemplos\n"+
			"4. Diálogos de ejemplo\n"+
			"5. Actividades prácticas (ejercicios de relleno, traducción o conversación)\n\n"+
			"Responde en español, pero usa el idioma objetivo en los ejemplos.",
		idiomaObjetivo, nivelIdioma, tema,
	)
}

func buildChatPrompt(mensaje, nivelIdioma, idiomaObjetivo string) string {
	return fmt.Sprintf(
		"Eres un tutor de idiomas amigable y paciente. El estudiante aprende %s "+
			"y tiene nivel '%s'.\n\n"+
			"Mensaje del estudiante: \"%s\"\n\n"+
			"Responde en DOS secciones usando exactamente este formato JSON (sin texto extra):\n"+
			"{\n"+
			"  \"respuesta\": \"<tu respuesta natural al estudiante>\",\n"+
			"  \"correccion\": \"<corrección gramatical si aplica, o null si el mensaje es correcto>\"\n"+
			"}",
		idiomaObjetivo, nivelIdioma, mensaje,
	)
}
